package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

// Store 基于 viper 的配置存储，同时实现 translation.SettingsStore
type Store struct {
	v          *viper.Viper
	configPath string
	logger     *zap.Logger

	mu        sync.RWMutex
	cfg       *Config
	listeners []func(translation.Settings)

	watchOnce    sync.Once
	watchPending bool
}

var (
	_ translation.SettingsStore   = (*Store)(nil)
	_ translation.SettingsWatcher = (*Store)(nil)
)

// NewStore 创建配置存储，configPath 为空时搜索 ~/.select-translator.yaml 和当前目录
func NewStore(configPath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		v:          newViper(configPath),
		configPath: configPath,
		logger:     logger,
	}
}

// Load 读取配置文件。文件不存在时使用默认配置，文件内容无效时返回错误
func (s *Store) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		s.logger.Info("未找到配置文件，使用默认配置", zap.String("path", s.Path()))
	}

	cfg, err := decode(s.v)
	if err != nil {
		return nil, err
	}

	s.cfg = cfg
	return cfg, nil
}

// Config 当前配置，未加载时返回默认配置
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return NewDefaultConfig()
	}
	cfg := *s.cfg
	cfg.Settings = s.cfg.Settings.Clone()
	return &cfg
}

// Path 配置文件路径，尚未创建时返回将要写入的位置
func (s *Store) Path() string {
	if used := s.v.ConfigFileUsed(); used != "" {
		return used
	}
	if s.configPath != "" {
		return s.configPath
	}
	return DefaultConfigPath()
}

// Settings 读取当前设置
func (s *Store) Settings(ctx context.Context) (translation.Settings, error) {
	if err := ctx.Err(); err != nil {
		return translation.Settings{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return translation.Settings{}, translation.ErrNoSettings
	}
	return s.cfg.Settings.Clone(), nil
}

// Save 校验后把设置写回配置文件
func (s *Store) Save(ctx context.Context, settings translation.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	settingsMap, err := toMap(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	path := s.Path()
	base, err := fileValues(path)
	if err == nil {
		err = s.write(path, base, settingsMap)
	}
	if err == nil {
		if s.cfg == nil {
			s.cfg = NewDefaultConfig()
		}
		s.cfg.Settings = settings.Clone()
	}
	pending := s.watchPending
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.logger.Info("设置已保存", zap.String("path", path), zap.Int("services", len(settings.AIServices)))

	if pending {
		s.startWatch()
	}
	return nil
}

// Init 写入默认配置文件，force 为 false 时不覆盖已有文件
func (s *Store) Init(force bool) (string, error) {
	path := s.Path()
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config file already exists: %s", path)
	}

	settingsMap, err := toMap(translation.DefaultSettings())
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(path, defaultValues(), settingsMap); err != nil {
		return "", err
	}
	cfg, err := decode(s.v)
	if err != nil {
		return "", err
	}
	s.cfg = cfg
	return path, nil
}

// OnChange 注册设置变化回调
func (s *Store) OnChange(fn func(translation.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Watch 监听配置文件变化。文件尚不存在时，在第一次保存后开始监听
func (s *Store) Watch() {
	if _, err := os.Stat(s.Path()); err != nil {
		s.mu.Lock()
		s.watchPending = true
		s.mu.Unlock()
		s.logger.Info("配置文件不存在，保存后开始监听", zap.String("path", s.Path()))
		return
	}
	s.startWatch()
}

func (s *Store) startWatch() {
	s.watchOnce.Do(func() {
		s.mu.Lock()
		s.watchPending = false
		if s.v.ConfigFileUsed() == "" {
			s.v.SetConfigFile(s.Path())
		}
		s.mu.Unlock()

		s.v.OnConfigChange(func(e fsnotify.Event) {
			s.reload(e.Name)
		})
		s.v.WatchConfig()
		s.logger.Info("开始监听配置文件", zap.String("path", s.Path()))
	})
}

// reload 文件变化后重新解析，无效内容保留旧配置
func (s *Store) reload(name string) {
	s.mu.Lock()
	cfg, err := decode(s.v)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("配置文件变更无效，保留原配置", zap.String("file", name), zap.Error(err))
		return
	}
	s.cfg = cfg
	listeners := append([]func(translation.Settings){}, s.listeners...)
	s.mu.Unlock()

	s.logger.Info("配置文件已重新加载", zap.String("file", name))
	for _, fn := range listeners {
		fn(cfg.Settings.Clone())
	}
}

// write 用新的设置替换 base 中的 settings 段后写出并重新读入。
// 文件中包含 API 密钥，权限为 0600
func (s *Store) write(path string, base, settingsMap map[string]any) error {
	base["settings"] = settingsMap

	data, err := Encode(base, FormatFromPath(path))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to chmod config: %w", err)
	}

	s.v.SetConfigFile(path)
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	return nil
}

// fileValues 只读取文件本身的内容，不含默认值和环境变量
func fileValues(path string) (map[string]any, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}

	f := viper.New()
	f.SetConfigFile(path)
	if err := f.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return f.AllSettings(), nil
}

// defaultValues 默认配置，不含环境变量
func defaultValues() map[string]any {
	d := viper.New()
	setDefaults(d)
	return d.AllSettings()
}

// toMap 借助 yaml 标签把设置转成 viper 可以写出的 map
func toMap(settings translation.Settings) (map[string]any, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return out, nil
}
