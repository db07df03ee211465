package anthropic

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// APIVersion anthropic-version 请求头
const APIVersion = "2023-06-01"

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

// Adapter Claude messages 接口适配器
type Adapter struct{}

var _ providers.Adapter = (*Adapter)(nil)

// New 创建 Claude 适配器
func New() *Adapter {
	return &Adapter{}
}

// Kind 适配器类型
func (a *Adapter) Kind() providers.Kind {
	return providers.KindAnthropic
}

// BuildRequest 构造 {baseUrl}/messages 请求
func (a *Adapter) BuildRequest(cfg providers.Config, prompt string) (*providers.HTTPRequest, error) {
	return &providers.HTTPRequest{
		URL: cfg.Endpoint("/messages"),
		Headers: map[string]string{
			"Content-Type":      "application/json",
			"x-api-key":         cfg.APIKey,
			"anthropic-version": APIVersion,
		},
		Body: messagesRequest{
			Model:     cfg.Model,
			MaxTokens: providers.MaxOutputTokens,
			Messages:  []message{{Role: "user", Content: prompt}},
		},
	}, nil
}

// ExtractText 读取 content[0].text
func (a *Adapter) ExtractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to decode response: invalid JSON")
	}

	return gjson.GetBytes(body, "content.0.text").String(), nil
}
