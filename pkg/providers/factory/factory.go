package factory

import (
	"fmt"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/anthropic"
	"github.com/nerdneilsfield/select-translator/pkg/providers/gemini"
	"github.com/nerdneilsfield/select-translator/pkg/providers/openai"
)

// NewRegistry 创建注册了全部内置适配器的注册表
func NewRegistry() *providers.Registry {
	registry := providers.NewRegistry()
	for _, kind := range providers.Kinds() {
		adapter, err := CreateAdapter(kind)
		if err != nil {
			// Kinds 与 CreateAdapter 不一致属于编程错误
			panic(err)
		}
		if err := registry.Register(adapter); err != nil {
			panic(err)
		}
	}
	return registry
}

// CreateAdapter 根据类型创建适配器
func CreateAdapter(kind providers.Kind) (providers.Adapter, error) {
	switch kind {
	case providers.KindOpenAI:
		return openai.New(), nil
	case providers.KindGemini:
		return gemini.New(), nil
	case providers.KindGeminiGateway:
		return gemini.NewGateway(), nil
	case providers.KindAnthropic:
		return anthropic.New(), nil
	case providers.KindCompatible:
		return openai.NewCompatible(), nil
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", kind)
	}
}
