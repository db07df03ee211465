package translation

import (
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/stats"
)

// Option 服务配置选项函数
type Option func(*serviceOptions)

// serviceOptions 服务内部选项
type serviceOptions struct {
	registry       *providers.Registry
	caller         providers.Caller
	cache          *ResultCache
	cacheSize      int
	stats          *stats.Manager
	maxConcurrency int
	requestTimeout time.Duration
	logger         *zap.Logger
}

// WithRegistry 设置适配器注册表
func WithRegistry(registry *providers.Registry) Option {
	return func(o *serviceOptions) {
		o.registry = registry
	}
}

// WithCaller 设置底层调用器，默认使用 resty 调用器
func WithCaller(caller providers.Caller) Option {
	return func(o *serviceOptions) {
		o.caller = caller
	}
}

// WithCache 设置结果缓存
func WithCache(cache *ResultCache) Option {
	return func(o *serviceOptions) {
		o.cache = cache
	}
}

// WithCacheSize 设置缓存容量，未指定缓存时生效
func WithCacheSize(size int) Option {
	return func(o *serviceOptions) {
		o.cacheSize = size
	}
}

// WithStats 设置统计管理器
func WithStats(manager *stats.Manager) Option {
	return func(o *serviceOptions) {
		o.stats = manager
	}
}

// WithMaxConcurrency 设置并发上限，1 表示逐个调用
func WithMaxConcurrency(n int) Option {
	return func(o *serviceOptions) {
		o.maxConcurrency = n
	}
}

// WithRequestTimeout 设置单次调用超时，未指定调用器时生效
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *serviceOptions) {
		o.requestTimeout = timeout
	}
}

// WithLogger 设置logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}
