package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Level(t *testing.T) {
	log, err := NewLogger(Options{Debug: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = NewLogger(Options{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.log")

	log, err := NewLogger(Options{LogFile: path})
	require.NoError(t, err)
	log.Info("写入日志文件")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "写入日志文件")
}

func TestNewLogger_Console(t *testing.T) {
	log, err := NewLogger(Options{Console: true})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
