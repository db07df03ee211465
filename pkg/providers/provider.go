package providers

import (
	"context"
	"fmt"
	"strings"
)

// 所有后端共用的采样参数，不提供按提供商覆盖
const (
	Temperature     = 0.3
	MaxOutputTokens = 1000
)

// Kind 提供商类型
type Kind string

const (
	KindOpenAI        Kind = "openai"
	KindGemini        Kind = "gemini"
	KindGeminiGateway Kind = "public-gemini"
	KindAnthropic     Kind = "claude"
	KindCompatible    Kind = "compatible"
)

// Kinds 返回全部已知类型
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindGemini, KindGeminiGateway, KindAnthropic, KindCompatible}
}

// Valid 判断类型是否已知
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Label 错误信息中使用的显示名，通用兼容类型为空
func (k Kind) Label() string {
	switch k {
	case KindOpenAI:
		return "OpenAI"
	case KindGemini:
		return "Gemini"
	case KindGeminiGateway:
		return "公共Gemini"
	case KindAnthropic:
		return "Claude"
	default:
		return ""
	}
}

// Config 单个AI后端的用户配置
type Config struct {
	// ID 稳定标识符，同时决定默认的适配器
	ID   string `mapstructure:"id" json:"id" yaml:"id" toml:"id"`
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name"`

	BaseURL string `mapstructure:"base_url" json:"baseUrl" yaml:"base_url" toml:"base_url"`
	// APIKey 对预先认证的网关可以为空
	APIKey  string `mapstructure:"api_key" json:"apiKey" yaml:"api_key" toml:"api_key"`
	Model   string `mapstructure:"model" json:"model" yaml:"model" toml:"model"`
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// Prompt 自定义提示词模板，为空时使用默认模板
	Prompt string `mapstructure:"prompt" json:"prompt,omitempty" yaml:"prompt,omitempty" toml:"prompt,omitempty"`

	// Kind 显式指定适配器，为空时按 ID 查映射表
	Kind Kind `mapstructure:"kind" json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
}

// DisplayName 返回显示名称，未设置时回退到 ID
func (c Config) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Endpoint 拼接基础地址和路径
func (c Config) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

// Enabled 过滤出已启用的配置，保持原有顺序
func Enabled(configs []Config) []Config {
	out := make([]Config, 0, len(configs))
	for _, cfg := range configs {
		if cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out
}

// HTTPRequest 适配器构造出的一次出站请求
type HTTPRequest struct {
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    any
}

// Adapter 每种后端的请求构造与响应提取能力
type Adapter interface {
	// Kind 适配器对应的类型
	Kind() Kind

	// BuildRequest 根据配置和提示词构造请求
	BuildRequest(cfg Config, prompt string) (*HTTPRequest, error)

	// ExtractText 从响应体中取出原始回复文本。
	// 字段缺失时返回空字符串，只有无法解析的 JSON 才返回错误。
	ExtractText(body []byte) (string, error)
}

// Caller 执行一次完整的提供商调用并返回原始回复文本
type Caller interface {
	Call(ctx context.Context, cfg Config, adapter Adapter, prompt string) (string, error)
}

// Error 提供商调用失败
type Error struct {
	Provider   string `json:"provider"`
	Label      string `json:"label,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Status     string `json:"status,omitempty"`
	Body       string `json:"body,omitempty"`
}

func (e *Error) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("API error: %s", e.Status)
	}
	return fmt.Sprintf("%s API error: %s", e.Label, e.Status)
}

// IsServerError 是否为 5xx
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500
}
