package transport

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// DefaultTimeout 单次调用的默认超时
const DefaultTimeout = 60 * time.Second

// maxErrorBody 错误日志中保留的响应体长度
const maxErrorBody = 512

// Client 基于 resty 的提供商调用器
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

var _ providers.Caller = (*Client)(nil)

// New 创建调用器，timeout 为 0 时使用默认值
func New(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:   resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// Call 构造请求、发送并提取回复文本。非 2xx 响应返回 *providers.Error
func (c *Client) Call(ctx context.Context, cfg providers.Config, adapter providers.Adapter, prompt string) (string, error) {
	req, err := adapter.BuildRequest(cfg, prompt)
	if err != nil {
		return "", err
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		SetBody(req.Body)
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}

	c.logger.Debug("发送提供商请求",
		zap.String("provider", cfg.ID),
		zap.String("kind", string(adapter.Kind())),
		zap.String("url", req.URL),
		zap.String("model", cfg.Model))

	resp, err := r.Post(req.URL)
	if err != nil {
		return "", err
	}

	if !resp.IsSuccess() {
		apiErr := &providers.Error{
			Provider:   cfg.ID,
			Label:      adapter.Kind().Label(),
			StatusCode: resp.StatusCode(),
			Status:     statusText(resp),
			Body:       abbreviate(resp.String(), maxErrorBody),
		}
		c.logger.Warn("提供商返回错误状态",
			zap.String("provider", cfg.ID),
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("body", apiErr.Body))
		return "", apiErr
	}

	text, err := adapter.ExtractText(resp.Body())
	if err != nil {
		return "", err
	}
	if text == "" {
		c.logger.Warn("提供商响应中没有文本内容", zap.String("provider", cfg.ID))
	}

	return text, nil
}

// statusText 只取状态短语，例如 "Internal Server Error"
func statusText(resp *resty.Response) string {
	code := resp.StatusCode()
	status := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(code)))
	if status != "" {
		return status
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return strconv.Itoa(code)
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
