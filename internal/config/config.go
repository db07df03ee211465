package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

const (
	// EnvPrefix 环境变量前缀，例如 SELECT_TRANSLATOR_DEBUG
	EnvPrefix = "SELECT_TRANSLATOR"
	// DefaultConfigName 默认配置文件名（不含扩展名）
	DefaultConfigName = ".select-translator"
	// DefaultRequestTimeout 默认请求超时（秒）
	DefaultRequestTimeout = 60
)

// Config 宿主进程的全部配置
type Config struct {
	Debug   bool   `mapstructure:"debug" json:"debug" yaml:"debug" toml:"debug"`
	LogFile string `mapstructure:"log_file" json:"logFile" yaml:"log_file" toml:"log_file"`

	CacheSize int `mapstructure:"cache_size" json:"cacheSize" yaml:"cache_size" toml:"cache_size"`
	// MaxConcurrency 0 表示每个提供商一个 goroutine，1 表示逐个调用
	MaxConcurrency int `mapstructure:"max_concurrency" json:"maxConcurrency" yaml:"max_concurrency" toml:"max_concurrency"`
	// RequestTimeout 单次提供商调用超时（秒）
	RequestTimeout int `mapstructure:"request_timeout" json:"requestTimeout" yaml:"request_timeout" toml:"request_timeout"`

	Settings translation.Settings `mapstructure:"settings" json:"settings" yaml:"settings" toml:"settings"`
}

// Timeout 请求超时
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		CacheSize:      translation.DefaultCacheSize,
		RequestTimeout: DefaultRequestTimeout,
		Settings:       translation.DefaultSettings(),
	}
}

// DefaultConfigPath 默认配置文件路径 ~/.select-translator.yaml
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigName + ".yaml"
	}
	return filepath.Join(home, DefaultConfigName+".yaml")
}

// setDefaults 设置默认值。ai_services 不设默认值，未配置时整体使用默认提供商列表
func setDefaults(v *viper.Viper) {
	defaults := translation.DefaultSettings()

	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
	v.SetDefault("cache_size", translation.DefaultCacheSize)
	v.SetDefault("max_concurrency", 0)
	v.SetDefault("request_timeout", DefaultRequestTimeout)

	v.SetDefault("settings.show_ipa", defaults.ShowIPA)
	v.SetDefault("settings.show_multiple_results", defaults.ShowMultipleResults)
	v.SetDefault("settings.auto_translate", defaults.AutoTranslate)
	v.SetDefault("settings.trigger_key", string(defaults.TriggerKey))
}

// newViper 创建绑定了默认值和环境变量的 viper 实例
func newViper(configPath string) *viper.Viper {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// decode 从 viper 解析配置并补齐默认的提供商列表
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !v.IsSet("settings.ai_services") {
		cfg.Settings.AIServices = translation.DefaultSettings().AIServices
	}
	if cfg.Settings.TriggerKey == "" {
		cfg.Settings.TriggerKey = translation.TriggerAlt
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
