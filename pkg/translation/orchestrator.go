package translation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// Orchestrator 把一次请求分发给所有提供商并按配置顺序汇总结果
type Orchestrator struct {
	registry       *providers.Registry
	caller         providers.Caller
	maxConcurrency int
	logger         *zap.Logger
}

// NewOrchestrator 创建编排器。maxConcurrency 为 0 时每个提供商一个 goroutine，为 1 时顺序执行
func NewOrchestrator(registry *providers.Registry, caller providers.Caller, maxConcurrency int, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxConcurrency < 0 {
		maxConcurrency = 0
	}
	return &Orchestrator{
		registry:       registry,
		caller:         caller,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// Translate 返回与 configs 等长、同序的结果列表。单个提供商失败只体现在对应结果的 Error 字段中
func (o *Orchestrator) Translate(ctx context.Context, configs []providers.Config, req Request) []Result {
	if len(configs) == 0 {
		return []Result{}
	}

	orchestrationID := uuid.New().String()
	startTime := time.Now()

	workers := o.maxConcurrency
	if workers == 0 || workers > len(configs) {
		workers = len(configs)
	}

	mapper := iter.Mapper[providers.Config, Result]{MaxGoroutines: workers}
	results := mapper.Map(configs, func(cfg *providers.Config) Result {
		return o.translateOne(ctx, orchestrationID, *cfg, req)
	})

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	o.logger.Debug("翻译分发完成",
		zap.String("orchestration_id", orchestrationID),
		zap.Int("providers", len(configs)),
		zap.Int("failed", failed),
		zap.Int("workers", workers),
		zap.Duration("duration", time.Since(startTime)))

	return results
}

// translateOne 单个提供商的完整流程，panic 也转换为失败结果
func (o *Orchestrator) translateOne(ctx context.Context, orchestrationID string, cfg providers.Config, req Request) Result {
	result := Result{
		ServiceID:   cfg.ID,
		ServiceName: cfg.Name,
	}

	var (
		raw string
		err error
	)
	var catcher panics.Catcher
	catcher.Try(func() {
		raw, err = o.call(ctx, orchestrationID, cfg, req)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	if err != nil {
		o.logger.Warn("提供商调用失败",
			zap.String("orchestration_id", orchestrationID),
			zap.String("provider", cfg.ID),
			zap.String("kind", string(providers.KindOf(cfg))),
			zap.Error(err))
		result.Error = err.Error()
		return result
	}

	parsed := ParseReply(raw)
	result.Translation = parsed.Translation
	result.IPA = parsed.IPA
	result.Meaning = parsed.Meaning
	return result
}

func (o *Orchestrator) call(ctx context.Context, orchestrationID string, cfg providers.Config, req Request) (string, error) {
	adapter, err := o.registry.Resolve(cfg)
	if err != nil {
		return "", err
	}

	o.logger.Debug("分发翻译请求",
		zap.String("orchestration_id", orchestrationID),
		zap.String("provider", cfg.ID),
		zap.String("kind", string(adapter.Kind())),
		zap.String("model", cfg.Model))

	return o.caller.Call(ctx, cfg, adapter, BuildPrompt(cfg, req))
}
