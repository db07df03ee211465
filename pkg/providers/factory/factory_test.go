package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

func TestNewRegistry_AllKinds(t *testing.T) {
	registry := NewRegistry()
	assert.Equal(t, providers.Kinds(), registry.List())

	for _, kind := range providers.Kinds() {
		adapter, err := registry.Get(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, adapter.Kind())
	}
}

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		cfg  providers.Config
		want providers.Kind
	}{
		{providers.Config{ID: "openai"}, providers.KindOpenAI},
		{providers.Config{ID: "gemini"}, providers.KindGemini},
		{providers.Config{ID: "public-gemini"}, providers.KindGeminiGateway},
		{providers.Config{ID: "claude"}, providers.KindAnthropic},
		{providers.Config{ID: "deepseek"}, providers.KindCompatible},
		{providers.Config{ID: "my-claude", Kind: providers.KindAnthropic}, providers.KindAnthropic},
	}

	for _, tt := range tests {
		adapter, err := registry.Resolve(tt.cfg)
		require.NoError(t, err, tt.cfg.ID)
		assert.Equal(t, tt.want, adapter.Kind(), tt.cfg.ID)
	}

	_, err := registry.Resolve(providers.Config{ID: "x", Kind: "bogus"})
	assert.Error(t, err)
}

func TestRegistry_DuplicateRegister(t *testing.T) {
	registry := NewRegistry()
	adapter, err := CreateAdapter(providers.KindOpenAI)
	require.NoError(t, err)
	assert.Error(t, registry.Register(adapter))

	_, err = CreateAdapter("bogus")
	assert.Error(t, err)
}
