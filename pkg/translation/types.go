package translation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// Request 一次用户发起的翻译请求
type Request struct {
	// SelectedText 选中的文本，不能为空
	SelectedText string `json:"selectedText"`
	// Context 选中文本所在的段落，可以为空
	Context string `json:"context"`
	// IsWord 选中文本不含空白时为 true
	IsWord bool `json:"isWord"`
	// WordIndex 单词在上下文分词中的位置，未找到时为 nil
	WordIndex *int `json:"wordIndex,omitempty"`
}

// Validate 校验请求
func (r Request) Validate() error {
	if strings.TrimSpace(r.SelectedText) == "" {
		return ErrEmptyText
	}
	if r.IsWord && strings.ContainsFunc(r.SelectedText, unicode.IsSpace) {
		return fmt.Errorf("%w: isWord set for text containing whitespace", ErrInvalidRequest)
	}
	if r.WordIndex != nil && *r.WordIndex < 0 {
		return fmt.Errorf("%w: negative wordIndex", ErrInvalidRequest)
	}
	return nil
}

// Result 单个提供商对一次请求的结果
type Result struct {
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
	// Translation 提取失败时为空字符串
	Translation string `json:"translation"`
	IPA         string `json:"ipa,omitempty"`
	Meaning     string `json:"meaning,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Failed 是否为失败结果
func (r Result) Failed() bool {
	return r.Error != ""
}

// Parsed 归一化后的回复
type Parsed struct {
	Translation string
	IPA         string
	Meaning     string
}

// TriggerKey 划词触发键
type TriggerKey string

const (
	TriggerAlt   TriggerKey = "alt"
	TriggerCtrl  TriggerKey = "ctrl"
	TriggerShift TriggerKey = "shift"
	TriggerNone  TriggerKey = "none"
)

// Valid 是否为已知触发键
func (k TriggerKey) Valid() bool {
	switch k {
	case TriggerAlt, TriggerCtrl, TriggerShift, TriggerNone:
		return true
	}
	return false
}

// Settings 持久化的扩展设置
type Settings struct {
	AIServices          []providers.Config `mapstructure:"ai_services" json:"aiServices" yaml:"ai_services" toml:"ai_services"`
	ShowIPA             bool               `mapstructure:"show_ipa" json:"showIpa" yaml:"show_ipa" toml:"show_ipa"`
	ShowMultipleResults bool               `mapstructure:"show_multiple_results" json:"showMultipleResults" yaml:"show_multiple_results" toml:"show_multiple_results"`
	AutoTranslate       bool               `mapstructure:"auto_translate" json:"autoTranslate" yaml:"auto_translate" toml:"auto_translate"`
	TriggerKey          TriggerKey         `mapstructure:"trigger_key" json:"triggerKey" yaml:"trigger_key" toml:"trigger_key"`
}

// Validate 校验设置
func (s Settings) Validate() error {
	seen := make(map[string]struct{}, len(s.AIServices))
	for i, svc := range s.AIServices {
		if svc.ID == "" {
			return fmt.Errorf("ai_services[%d]: id is required", i)
		}
		if _, dup := seen[svc.ID]; dup {
			return fmt.Errorf("ai_services[%d]: duplicate id %q", i, svc.ID)
		}
		seen[svc.ID] = struct{}{}

		if svc.BaseURL == "" {
			return fmt.Errorf("ai_services[%d] (%s): base_url is required", i, svc.ID)
		}
		if svc.Kind != "" && !svc.Kind.Valid() {
			return fmt.Errorf("ai_services[%d] (%s): unknown kind %q", i, svc.ID, svc.Kind)
		}
	}

	if !s.TriggerKey.Valid() {
		return fmt.Errorf("invalid trigger_key %q", s.TriggerKey)
	}
	return nil
}

// EnabledServices 已启用的提供商，保持配置顺序
func (s Settings) EnabledServices() []providers.Config {
	return providers.Enabled(s.AIServices)
}

// Clone 深拷贝
func (s Settings) Clone() Settings {
	out := s
	out.AIServices = append([]providers.Config(nil), s.AIServices...)
	return out
}

// DefaultSettings 未保存任何设置时使用的默认值
func DefaultSettings() Settings {
	return Settings{
		AIServices: []providers.Config{
			{
				ID:      "openai",
				Name:    "OpenAI",
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-3.5-turbo",
				Enabled: true,
				Prompt:  DefaultPrompt,
			},
			{
				ID:      "gemini",
				Name:    "Gemini",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Model:   "gemini-pro",
				Prompt:  DefaultPrompt,
			},
			{
				ID:      "public-gemini",
				Name:    "公共Gemini服务",
				BaseURL: "https://gpt-load.linstudios.top/proxy/gemini/v1beta",
				APIKey:  "sdk_1234_kdsfds",
				Model:   "gemini-2.5-flash",
				Prompt:  DefaultPrompt,
			},
			{
				ID:      "claude",
				Name:    "Claude",
				BaseURL: "https://api.anthropic.com/v1",
				Model:   "claude-3-haiku-20240307",
				Prompt:  DefaultPrompt,
			},
		},
		ShowIPA:             true,
		ShowMultipleResults: true,
		AutoTranslate:       false,
		TriggerKey:          TriggerAlt,
	}
}
