package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format 配置导出格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat 解析格式名
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatFromPath 根据扩展名判断格式，未知扩展名按 YAML 处理
func FormatFromPath(path string) Format {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatYAML
	}
	return format
}

// Encode 按格式序列化
func Encode(v any, format Format) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return buf.Bytes(), nil
}

// Export 把配置写到 w，mask 为 true 时隐藏 API 密钥
func Export(cfg *Config, format Format, mask bool, w io.Writer) error {
	if mask {
		cfg = MaskSecrets(cfg)
	}
	data, err := Encode(cfg, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MaskSecrets 返回 API 密钥被遮盖的副本
func MaskSecrets(cfg *Config) *Config {
	masked := *cfg
	masked.Settings = cfg.Settings.Clone()
	for i := range masked.Settings.AIServices {
		masked.Settings.AIServices[i].APIKey = MaskKey(masked.Settings.AIServices[i].APIKey)
	}
	return &masked
}

// MaskKey 保留首尾各四个字符
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
