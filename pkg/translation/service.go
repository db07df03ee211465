package translation

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/factory"
	"github.com/nerdneilsfield/select-translator/pkg/providers/stats"
	"github.com/nerdneilsfield/select-translator/pkg/providers/transport"
)

// SettingsStore 设置的读写端
type SettingsStore interface {
	// Settings 读取当前设置，未保存过时返回默认设置
	Settings(ctx context.Context) (Settings, error)
	// Save 持久化设置
	Save(ctx context.Context, settings Settings) error
}

// SettingsWatcher 可选能力：设置在外部被修改时回调
type SettingsWatcher interface {
	OnChange(func(Settings))
}

// Stats 服务运行统计
type Stats struct {
	Translations int64                 `json:"translations"`
	Cache        CacheStats            `json:"cache"`
	Providers    []stats.ProviderStats `json:"providers"`
}

// Service 长期运行的翻译服务，持有缓存和统计状态
type Service struct {
	store        SettingsStore
	orchestrator *Orchestrator
	cache        *ResultCache
	stats        *stats.Manager
	logger       *zap.Logger

	translations atomic.Int64
	started      atomic.Bool

	// generation 每次清空缓存时递增，旧设置下的结果不再写入缓存
	generation atomic.Uint64
	cacheMu    sync.Mutex

	// lifecycle 翻译持有读锁，Close 持有写锁
	lifecycle sync.RWMutex
	closed    bool
}

// New 创建翻译服务
func New(store SettingsStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, WrapError(ErrNoSettings, ErrCodeSettings, "settings store is nil")
	}

	options := serviceOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.logger == nil {
		options.logger = zap.NewNop()
	}
	if options.registry == nil {
		options.registry = factory.NewRegistry()
	}
	if options.cache == nil {
		options.cache = NewResultCache(options.cacheSize)
	}
	if options.stats == nil {
		options.stats = stats.NewManager(options.logger)
	}
	if options.caller == nil {
		options.caller = transport.New(options.requestTimeout, options.logger)
	}

	caller := stats.NewMiddleware(options.caller, options.stats)

	return &Service{
		store:        store,
		orchestrator: NewOrchestrator(options.registry, caller, options.maxConcurrency, options.logger),
		cache:        options.cache,
		stats:        options.stats,
		logger:       options.logger,
	}, nil
}

// Start 订阅设置变化，设置被修改时清空缓存
func (s *Service) Start(ctx context.Context) error {
	if s.isClosed() {
		return ErrServiceClosed
	}
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if watcher, ok := s.store.(SettingsWatcher); ok {
		watcher.OnChange(func(Settings) {
			if s.isClosed() {
				return
			}
			s.invalidate("settings changed")
		})
	}

	s.logger.Info("翻译服务已启动", zap.Int64("cache_capacity", s.cache.Stats().Capacity))
	return nil
}

// Close 拒绝新请求并等待进行中的翻译结束
func (s *Service) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("翻译服务已关闭", zap.Int64("translations", s.translations.Load()))
	return nil
}

// Translate 先查缓存，未命中时分发给所有已启用的提供商并写入缓存
func (s *Service) Translate(ctx context.Context, req Request) ([]Result, error) {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	if s.closed {
		return nil, WrapError(ErrServiceClosed, ErrCodeClosed, "translate")
	}

	if err := req.Validate(); err != nil {
		return nil, WrapError(err, ErrCodeValidation, "invalid request")
	}

	key := CacheKey(req)
	if results, ok := s.cache.Get(key); ok {
		s.logger.Debug("命中翻译缓存", zap.Int("results", len(results)))
		return results, nil
	}

	generation := s.generation.Load()
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, WrapError(err, ErrCodeSettings, "failed to load settings")
	}

	results := s.orchestrator.Translate(ctx, settings.EnabledServices(), req)
	s.translations.Add(1)
	s.storeResults(generation, key, results)

	return results, nil
}

// storeResults 写入缓存，翻译期间缓存被清空过则丢弃
func (s *Service) storeResults(generation uint64, key string, results []Result) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.generation.Load() != generation {
		s.logger.Debug("设置已变化，结果不写入缓存")
		return
	}
	if s.cache.Add(key, results) {
		s.logger.Debug("淘汰最早的缓存条目", zap.Int("capacity", s.cache.capacity))
	}
}

// TranslateWith 使用给定的提供商列表翻译，不经过设置和缓存
func (s *Service) TranslateWith(ctx context.Context, configs []providers.Config, req Request) ([]Result, error) {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	if s.closed {
		return nil, WrapError(ErrServiceClosed, ErrCodeClosed, "translate")
	}
	if err := req.Validate(); err != nil {
		return nil, WrapError(err, ErrCodeValidation, "invalid request")
	}

	results := s.orchestrator.Translate(ctx, configs, req)
	s.translations.Add(1)
	return results, nil
}

// Settings 读取当前设置
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return Settings{}, WrapError(err, ErrCodeSettings, "failed to load settings")
	}
	return settings, nil
}

// SaveSettings 校验并保存设置，随后清空缓存
func (s *Service) SaveSettings(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return WrapError(err, ErrCodeValidation, "invalid settings")
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return WrapError(err, ErrCodeSettings, "failed to save settings")
	}
	s.invalidate("settings saved")
	return nil
}

// ClearCache 清空结果缓存
func (s *Service) ClearCache() {
	s.invalidate("cache cleared")
}

// Stats 获取运行统计
func (s *Service) Stats() Stats {
	return Stats{
		Translations: s.translations.Load(),
		Cache:        s.cache.Stats(),
		Providers:    s.stats.GetAllStats(),
	}
}

func (s *Service) isClosed() bool {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	return s.closed
}

func (s *Service) invalidate(reason string) {
	s.cacheMu.Lock()
	s.generation.Add(1)
	size := s.cache.Len()
	s.cache.Purge()
	s.cacheMu.Unlock()
	s.logger.Info("翻译缓存已清空", zap.String("reason", reason), zap.Int("entries", size))
}
