package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

func testConfig() providers.Config {
	return providers.Config{
		ID:      "openai",
		Name:    "OpenAI",
		BaseURL: "https://api.openai.com/v1/",
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		Enabled: true,
	}
}

func TestAdapter_BuildRequest(t *testing.T) {
	adapter := New()
	assert.Equal(t, providers.KindOpenAI, adapter.Kind())

	req, err := adapter.BuildRequest(testConfig(), "translate me")
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", req.URL)
	assert.Equal(t, "Bearer sk-test", req.Headers["Authorization"])
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.Empty(t, req.Query)

	body, err := json.Marshal(req.Body)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(body, "model").String())
	assert.InDelta(t, 0.3, gjson.GetBytes(body, "temperature").Float(), 1e-9)
	assert.Equal(t, int64(1000), gjson.GetBytes(body, "max_tokens").Int())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "messages.#").Int())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "translate me", gjson.GetBytes(body, "messages.0.content").String())
}

func TestAdapter_ExtractText(t *testing.T) {
	adapter := New()

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "正常响应",
			body: `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Translation: 你好"}}]}`,
			want: "Translation: 你好",
		},
		{
			name: "没有choices",
			body: `{"choices":[]}`,
			want: "",
		},
		{
			name: "空对象",
			body: `{}`,
			want: "",
		},
		{
			name:    "无效JSON",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adapter.ExtractText([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompatibleAdapter_BuildRequest(t *testing.T) {
	adapter := NewCompatible()
	assert.Equal(t, providers.KindCompatible, adapter.Kind())

	cfg := testConfig()
	cfg.ID = "deepseek"
	cfg.BaseURL = "https://api.deepseek.com"
	cfg.Model = "deepseek-chat"

	req, err := adapter.BuildRequest(cfg, "hello")
	require.NoError(t, err)

	assert.Equal(t, "https://api.deepseek.com/chat/completions", req.URL)
	assert.Equal(t, "Bearer sk-test", req.Headers["Authorization"])

	body, err := json.Marshal(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "hello", gjson.GetBytes(body, "messages.0.content").String())
}

func TestCompatibleAdapter_ExtractText(t *testing.T) {
	adapter := NewCompatible()

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "choices格式", body: `{"choices":[{"message":{"content":"hola"}}]}`, want: "hola"},
		{name: "顶层content回退", body: `{"content":"bonjour"}`, want: "bonjour"},
		{name: "choices为空时回退", body: `{"choices":[],"content":"ciao"}`, want: "ciao"},
		{name: "字段全部缺失", body: `{"data":1}`, want: ""},
		{name: "无效JSON", body: `{"choices":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adapter.ExtractText([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
