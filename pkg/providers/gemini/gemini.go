package gemini

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// 请求体结构
type (
	part struct {
		Text string `json:"text"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	generationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	}

	generateContentRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}
)

// Adapter Gemini generateContent 适配器。
// 原生接口通过 key 查询参数认证，网关版本改用 Bearer 头。
type Adapter struct {
	kind providers.Kind
}

var _ providers.Adapter = (*Adapter)(nil)

// New 创建原生 Gemini 适配器
func New() *Adapter {
	return &Adapter{kind: providers.KindGemini}
}

// NewGateway 创建网关版 Gemini 适配器
func NewGateway() *Adapter {
	return &Adapter{kind: providers.KindGeminiGateway}
}

// Kind 适配器类型
func (a *Adapter) Kind() providers.Kind {
	return a.kind
}

// BuildRequest 构造 {baseUrl}/models/{model}:generateContent 请求
func (a *Adapter) BuildRequest(cfg providers.Config, prompt string) (*providers.HTTPRequest, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", cfg.ID)
	}

	req := &providers.HTTPRequest{
		URL: cfg.Endpoint(fmt.Sprintf("/models/%s:generateContent", cfg.Model)),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: generateContentRequest{
			Contents: []content{
				{Parts: []part{{Text: prompt}}},
			},
			GenerationConfig: generationConfig{
				Temperature:     providers.Temperature,
				MaxOutputTokens: providers.MaxOutputTokens,
			},
		},
	}

	if a.kind == providers.KindGeminiGateway {
		req.Headers["Authorization"] = "Bearer " + cfg.APIKey
	} else {
		req.Query = map[string]string{"key": cfg.APIKey}
	}

	return req, nil
}

// ExtractText 读取 candidates[0].content.parts[0].text
func (a *Adapter) ExtractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to decode response: invalid JSON")
	}

	return gjson.GetBytes(body, "candidates.0.content.parts.0.text").String(), nil
}
