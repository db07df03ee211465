package translation

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrEmptyText 选中文本为空
	ErrEmptyText = errors.New("empty text provided")

	// ErrInvalidRequest 请求字段不一致
	ErrInvalidRequest = errors.New("invalid translation request")

	// ErrNoSettings 设置无法读取
	ErrNoSettings = errors.New("settings unavailable")

	// ErrServiceClosed 服务已关闭
	ErrServiceClosed = errors.New("translation service closed")
)

// 错误代码常量
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeSettings   = "SETTINGS_ERROR"
	ErrCodeClosed     = "SERVICE_CLOSED"
)

// TranslationError 顶层翻译错误，提供商级别的失败不会以此形式返回
type TranslationError struct {
	Code    string
	Message string
	Cause   error
}

// Error 实现error接口
func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// WrapError 包装错误
func WrapError(err error, code, message string) error {
	if err == nil {
		return nil
	}

	var te *TranslationError
	if errors.As(err, &te) {
		return &TranslationError{Code: te.Code, Message: message + ": " + te.Message, Cause: te.Cause}
	}

	return &TranslationError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// ErrorCode 提取错误代码，非 TranslationError 返回空字符串
func ErrorCode(err error) string {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
