package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志选项
type Options struct {
	Debug bool
	// LogFile 额外写入的日志文件，为空时只写 stderr
	LogFile string
	// Console 使用可读的控制台格式，命令行交互时开启
	Console bool
}

// NewLogger 创建一个新的日志记录器。
// 标准输出留给原生消息协议，日志只写 stderr 和日志文件。
func NewLogger(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	if opts.Debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if opts.Console {
		config.Encoding = "console"
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = true

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.LogFile != "" {
		config.OutputPaths = append(config.OutputPaths, opts.LogFile)
		config.ErrorOutputPaths = append(config.ErrorOutputPaths, opts.LogFile)
	}

	return config.Build()
}
