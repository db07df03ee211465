package stats

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// Middleware 在调用器外层记录统计
type Middleware struct {
	next    providers.Caller
	manager *Manager
}

var _ providers.Caller = (*Middleware)(nil)

// NewMiddleware 创建统计中间件
func NewMiddleware(next providers.Caller, manager *Manager) *Middleware {
	return &Middleware{
		next:    next,
		manager: manager,
	}
}

// Call 带统计的调用
func (m *Middleware) Call(ctx context.Context, cfg providers.Config, adapter providers.Adapter, prompt string) (string, error) {
	startTime := time.Now()

	text, err := m.next.Call(ctx, cfg, adapter, prompt)

	result := RequestResult{
		Success: err == nil,
		Empty:   err == nil && strings.TrimSpace(text) == "",
		Latency: time.Since(startTime),
	}
	if err != nil {
		result.ErrorType = ClassifyError(err)
	}

	m.manager.RecordRequest(cfg.ID, cfg.Model, result)

	return text, err
}

// ClassifyError 错误分类
func ClassifyError(err error) string {
	var apiErr *providers.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return "auth_error"
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return "rate_limit"
		case apiErr.StatusCode == http.StatusBadGateway:
			return "bad_gateway"
		case apiErr.StatusCode == http.StatusServiceUnavailable:
			return "service_unavailable"
		case apiErr.IsServerError():
			return "server_error"
		default:
			return "bad_request"
		}
	}

	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network_error"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "decode") || strings.Contains(errStr, "json"):
		return "decode_error"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "network"):
		return "network_error"
	default:
		return "unknown_error"
	}
}
