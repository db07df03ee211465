package providers

import (
	"fmt"
	"sync"
)

// kindByID 提供商标识到适配器类型的映射表，未列出的标识走通用兼容适配器
var kindByID = map[string]Kind{
	"openai":        KindOpenAI,
	"gemini":        KindGemini,
	"public-gemini": KindGeminiGateway,
	"claude":        KindAnthropic,
}

// KindOf 解析配置使用的适配器类型
func KindOf(cfg Config) Kind {
	if cfg.Kind != "" {
		return cfg.Kind
	}
	if kind, ok := kindByID[cfg.ID]; ok {
		return kind
	}
	return KindCompatible
}

// Registry 适配器注册表
type Registry struct {
	mu       sync.RWMutex
	adapters map[Kind]Adapter
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Kind]Adapter),
	}
}

// Register 注册适配器
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := adapter.Kind()
	if _, exists := r.adapters[kind]; exists {
		return fmt.Errorf("adapter %s already registered", kind)
	}

	r.adapters[kind] = adapter
	return nil
}

// Get 按类型获取适配器
func (r *Registry) Get(kind Kind) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[kind]
	if !exists {
		return nil, fmt.Errorf("adapter %s not found", kind)
	}

	return adapter, nil
}

// Resolve 为提供商配置选出适配器
func (r *Registry) Resolve(cfg Config) (Adapter, error) {
	kind := KindOf(cfg)
	if !kind.Valid() {
		return nil, fmt.Errorf("provider %s: unknown kind %q", cfg.ID, kind)
	}
	return r.Get(kind)
}

// List 列出已注册的类型
func (r *Registry) List() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.adapters))
	for _, kind := range Kinds() {
		if _, ok := r.adapters[kind]; ok {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}
