package openai

import (
	"encoding/json"
	"fmt"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"
)

// Adapter OpenAI chat/completions 适配器
type Adapter struct{}

// 确保 Adapter 实现 providers.Adapter 接口
var _ providers.Adapter = (*Adapter)(nil)

// New 创建 OpenAI 适配器
func New() *Adapter {
	return &Adapter{}
}

// Kind 适配器类型
func (a *Adapter) Kind() providers.Kind {
	return providers.KindOpenAI
}

// BuildRequest 构造 {baseUrl}/chat/completions 请求
func (a *Adapter) BuildRequest(cfg providers.Config, prompt string) (*providers.HTTPRequest, error) {
	return buildChatRequest(cfg, prompt), nil
}

// ExtractText 读取 choices[0].message.content
func (a *Adapter) ExtractText(body []byte) (string, error) {
	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}

	return completion.Choices[0].Message.Content, nil
}

// CompatibleAdapter 通用 OpenAI 兼容服务适配器，用于所有未识别的提供商
type CompatibleAdapter struct{}

var _ providers.Adapter = (*CompatibleAdapter)(nil)

// NewCompatible 创建通用兼容适配器
func NewCompatible() *CompatibleAdapter {
	return &CompatibleAdapter{}
}

// Kind 适配器类型
func (a *CompatibleAdapter) Kind() providers.Kind {
	return providers.KindCompatible
}

// BuildRequest 与 OpenAI 完全相同的请求格式
func (a *CompatibleAdapter) BuildRequest(cfg providers.Config, prompt string) (*providers.HTTPRequest, error) {
	return buildChatRequest(cfg, prompt), nil
}

// ExtractText 优先 choices[0].message.content，缺失时回退到顶层 content 字段
func (a *CompatibleAdapter) ExtractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to decode response: invalid JSON")
	}

	if content := gjson.GetBytes(body, "choices.0.message.content").String(); content != "" {
		return content, nil
	}

	return gjson.GetBytes(body, "content").String(), nil
}

// buildChatRequest 单条 user 消息的 chat 请求
func buildChatRequest(cfg providers.Config, prompt string) *providers.HTTPRequest {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(providers.Temperature),
		MaxTokens:   openai.Int(providers.MaxOutputTokens),
	}

	return &providers.HTTPRequest{
		URL: cfg.Endpoint("/chat/completions"),
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + cfg.APIKey,
		},
		Body: params,
	}
}
