package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/anthropic"
)

// Model 可用模型
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"ownedBy,omitempty"`
}

// Lister 查询提供商的模型列表，用于设置页面填写模型名
type Lister struct {
	http *resty.Client
}

// NewLister 创建模型查询器
func NewLister(timeout time.Duration) *Lister {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Lister{http: resty.New().SetTimeout(timeout)}
}

// List 按提供商类型查询模型，结果按 ID 排序
func (l *Lister) List(ctx context.Context, cfg providers.Config) ([]Model, error) {
	var (
		out []Model
		err error
	)

	switch kind := providers.KindOf(cfg); kind {
	case providers.KindOpenAI, providers.KindCompatible:
		out, err = l.listOpenAI(ctx, cfg)
	case providers.KindGemini, providers.KindGeminiGateway:
		out, err = l.listGemini(ctx, cfg, kind)
	case providers.KindAnthropic:
		out, err = l.listAnthropic(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", kind)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *Lister) listOpenAI(ctx context.Context, cfg providers.Config) ([]Model, error) {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	client := goopenai.NewClientWithConfig(clientConfig)

	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s list models: %w", cfg.ID, err)
	}

	out := make([]Model, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, Model{ID: m.ID, OwnedBy: m.OwnedBy})
	}
	return out, nil
}

func (l *Lister) listGemini(ctx context.Context, cfg providers.Config, kind providers.Kind) ([]Model, error) {
	r := l.http.R().SetContext(ctx)
	if kind == providers.KindGeminiGateway {
		r.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	} else {
		r.SetQueryParam("key", cfg.APIKey)
	}

	resp, err := r.Get(cfg.Endpoint("/models"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s list models: %s", cfg.ID, resp.Status())
	}

	var out []Model
	for _, name := range gjson.GetBytes(resp.Body(), "models.#.name").Array() {
		out = append(out, Model{ID: strings.TrimPrefix(name.String(), "models/")})
	}
	return out, nil
}

func (l *Lister) listAnthropic(ctx context.Context, cfg providers.Config) ([]Model, error) {
	resp, err := l.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", anthropic.APIVersion).
		Get(cfg.Endpoint("/models"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s list models: %s", cfg.ID, resp.Status())
	}

	var out []Model
	for _, id := range gjson.GetBytes(resp.Body(), "data.#.id").Array() {
		out = append(out, Model{ID: id.String(), OwnedBy: "anthropic"})
	}
	return out, nil
}
