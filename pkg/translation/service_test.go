package translation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/factory"
	"github.com/nerdneilsfield/select-translator/pkg/providers/stats"
)

// memStore 内存中的设置存储
type memStore struct {
	mu        sync.Mutex
	settings  Settings
	err       error
	saved     int
	listeners []func(Settings)
}

func (m *memStore) Settings(ctx context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Settings{}, m.err
	}
	return m.settings.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings.Clone()
	m.saved++
	return nil
}

func (m *memStore) OnChange(fn func(Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// externalEdit 模拟配置文件被外部修改
func (m *memStore) externalEdit(settings Settings) {
	m.mu.Lock()
	m.settings = settings
	listeners := append([]func(Settings){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(settings)
	}
}

func countingBackend(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Translation: 猫\nIPA: /kæt/"}}]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func testSettings(baseURL string) Settings {
	s := DefaultSettings()
	s.AIServices = []providers.Config{
		{ID: "openai", Name: "OpenAI", BaseURL: baseURL, Model: "gpt", Enabled: true},
		{ID: "claude", Name: "Claude", BaseURL: baseURL, Model: "haiku", Enabled: false},
	}
	return s
}

func newTestService(t *testing.T, store *memStore, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop()), WithRequestTimeout(5 * time.Second)}, opts...)
	svc, err := New(store, opts...)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_Translate_CachesResults(t *testing.T) {
	var calls atomic.Int32
	server := countingBackend(t, &calls)
	svc := newTestService(t, &memStore{settings: testSettings(server.URL)})

	req := NewRequest("cat", "The cat sat.")

	first, err := svc.Translate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "猫", first[0].Translation)
	assert.Equal(t, "/kæt/", first[0].IPA)

	second, err := svc.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats.Translations)
	assert.Equal(t, int64(1), stats.Cache.Hits)
	require.Len(t, stats.Providers, 1)
	assert.Equal(t, "openai", stats.Providers[0].ProviderID)
	assert.Equal(t, int64(1), stats.Providers[0].SuccessfulRequests)
}

func TestService_SettingsChangeClearsCache(t *testing.T) {
	var calls atomic.Int32
	server := countingBackend(t, &calls)
	store := &memStore{settings: testSettings(server.URL)}
	svc := newTestService(t, store)

	req := NewRequest("cat", "")
	_, err := svc.Translate(context.Background(), req)
	require.NoError(t, err)

	store.externalEdit(testSettings(server.URL))
	_, err = svc.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	require.NoError(t, svc.SaveSettings(context.Background(), testSettings(server.URL)))
	assert.Equal(t, 1, store.saved)
	_, err = svc.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	svc.ClearCache()
	_, err = svc.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestService_OnlyEnabledProviders(t *testing.T) {
	var calls atomic.Int32
	server := countingBackend(t, &calls)
	settings := testSettings(server.URL)
	settings.AIServices[1].Enabled = true
	settings.AIServices = append(settings.AIServices, providers.Config{ID: "off", BaseURL: server.URL})

	svc := newTestService(t, &memStore{settings: settings})
	results, err := svc.Translate(context.Background(), NewRequest("the cat", "The cat sat."))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "openai", results[0].ServiceID)
	assert.Equal(t, "claude", results[1].ServiceID)
	// Claude 适配器读 content[0].text，OpenAI 格式的回复在这里为空
	assert.Empty(t, results[1].Error)
}

func TestService_TopLevelErrors(t *testing.T) {
	store := &memStore{err: errors.New("disk on fire")}
	svc := newTestService(t, store)

	_, err := svc.Translate(context.Background(), Request{SelectedText: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyText))
	assert.Equal(t, ErrCodeValidation, ErrorCode(err))

	_, err = svc.Translate(context.Background(), NewRequest("cat", ""))
	require.Error(t, err)
	assert.Equal(t, ErrCodeSettings, ErrorCode(err))
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = svc.Settings(context.Background())
	assert.Error(t, err)
}

func TestService_SaveSettingsValidation(t *testing.T) {
	store := &memStore{settings: DefaultSettings()}
	svc := newTestService(t, store)

	bad := DefaultSettings()
	bad.TriggerKey = "meta"
	err := svc.SaveSettings(context.Background(), bad)
	require.Error(t, err)
	assert.Equal(t, ErrCodeValidation, ErrorCode(err))
	assert.Equal(t, 0, store.saved)

	dup := DefaultSettings()
	dup.AIServices = append(dup.AIServices, dup.AIServices[0])
	assert.Error(t, svc.SaveSettings(context.Background(), dup))
}

func TestService_Close(t *testing.T) {
	svc := newTestService(t, &memStore{settings: DefaultSettings()})
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	_, err := svc.Translate(context.Background(), NewRequest("cat", ""))
	assert.True(t, errors.Is(err, ErrServiceClosed))
	assert.True(t, errors.Is(svc.Start(context.Background()), ErrServiceClosed))
}

func TestService_TranslateWith(t *testing.T) {
	var calls atomic.Int32
	server := countingBackend(t, &calls)
	svc := newTestService(t, &memStore{settings: DefaultSettings()})

	configs := []providers.Config{{ID: "deepseek", Name: "DeepSeek", BaseURL: server.URL, Model: "chat"}}
	for i := 0; i < 2; i++ {
		results, err := svc.TranslateWith(context.Background(), configs, NewRequest("cat", ""))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "猫", results[0].Translation)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, svc.Stats().Cache.Size)
}

func TestNew_NilStore(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, ErrNoSettings))
}

func TestService_InjectedDependencies(t *testing.T) {
	manager := stats.NewManager(zap.NewNop())
	cache := NewResultCache(1)
	caller := funcCaller(func(ctx context.Context, cfg providers.Config, adapter providers.Adapter, prompt string) (string, error) {
		if cfg.ID == "claude" {
			return "", &providers.Error{Provider: cfg.ID, Label: "Claude", StatusCode: 429, Status: "Too Many Requests"}
		}
		return "Translation: 注入", nil
	})

	settings := testSettings("http://unused.invalid")
	settings.AIServices[1].Enabled = true
	svc := newTestService(t, &memStore{settings: settings},
		WithRegistry(factory.NewRegistry()),
		WithCaller(caller),
		WithCache(cache),
		WithStats(manager),
	)

	results, err := svc.Translate(context.Background(), NewRequest("dog", ""))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "注入", results[0].Translation)
	assert.Equal(t, "Claude API error: Too Many Requests", results[1].Error)

	_, err = svc.Translate(context.Background(), NewRequest("cat", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int64(1), cache.Stats().Evictions)

	claude := manager.GetStats("claude", "haiku")
	require.NotNil(t, claude)
	assert.Equal(t, int64(2), claude.FailedRequests)
	assert.Equal(t, int64(2), claude.ErrorTypes["rate_limit"])
}

func TestService_SettingsChangeDuringTranslate(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	caller := funcCaller(func(ctx context.Context, cfg providers.Config, adapter providers.Adapter, prompt string) (string, error) {
		if cfg.Model == "old-model" {
			started <- struct{}{}
			<-release
		}
		return "Translation: " + cfg.Model, nil
	})

	store := &memStore{settings: testSettings("http://unused.invalid")}
	store.settings.AIServices[0].Model = "old-model"
	svc := newTestService(t, store, WithCaller(caller))
	req := NewRequest("cat", "")

	done := make(chan []Result, 1)
	go func() {
		results, err := svc.Translate(context.Background(), req)
		assert.NoError(t, err)
		done <- results
	}()
	<-started

	updated := testSettings("http://unused.invalid")
	updated.AIServices[0].Model = "new-model"
	require.NoError(t, svc.SaveSettings(context.Background(), updated))
	close(release)

	stale := <-done
	require.Len(t, stale, 1)
	assert.Equal(t, "old-model", stale[0].Translation)
	assert.Zero(t, svc.Stats().Cache.Size)

	fresh, err := svc.Translate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "new-model", fresh[0].Translation)
}

func TestService_ExternalEditDuringTranslate(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	caller := funcCaller(func(ctx context.Context, cfg providers.Config, adapter providers.Adapter, prompt string) (string, error) {
		if cfg.Model == "old-model" {
			started <- struct{}{}
			<-release
		}
		return "Translation: " + cfg.Model, nil
	})

	store := &memStore{settings: testSettings("http://unused.invalid")}
	store.settings.AIServices[0].Model = "old-model"
	svc := newTestService(t, store, WithCaller(caller))
	req := NewRequest("dog", "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Translate(context.Background(), req)
		assert.NoError(t, err)
	}()
	<-started

	edited := testSettings("http://unused.invalid")
	edited.AIServices[0].Model = "new-model"
	store.externalEdit(edited)
	close(release)
	<-done

	results, err := svc.Translate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new-model", results[0].Translation)
}
