package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/internal/config"
	"github.com/nerdneilsfield/select-translator/internal/host"
	"github.com/nerdneilsfield/select-translator/internal/logger"
	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

var (
	// 全局标志
	cfgFile   string
	debugMode bool
	logFile   string

	// install-host 标志
	browserName  string
	extensionIDs []string
	manifestDir  string
	hostBinary   string
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "select-translator",
		Short: "划词翻译的 AI 宿主程序",
		Long: `select-translator 是划词翻译的 AI 宿主程序。
它把选中的文本同时发给多个 AI 提供商翻译，
返回每个提供商的译文、音标和释义。

它可以作为浏览器扩展的原生消息宿主运行（host 子命令），
也可以直接在命令行中翻译（translate 子命令）。

支持的提供商类型:
  - openai: OpenAI Chat Completions
  - gemini: Google Gemini
  - public-gemini: 公共 Gemini 网关
  - claude: Anthropic Messages
  - compatible: 任意 OpenAI 兼容接口`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认 ~/.select-translator.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "额外写入的日志文件")

	rootCmd.AddCommand(
		NewTranslateCommand(),
		NewHostCommand(version),
		NewInstallHostCommand(),
		NewProvidersCommand(),
		NewModelsCommand(),
		NewConfigCommand(),
	)

	return rootCmd
}

// env 命令运行所需的配置和日志
type env struct {
	store  *config.Store
	cfg    *config.Config
	logger *zap.Logger
}

// loadEnv 加载配置并创建日志，console 为 true 时使用可读的日志格式
func loadEnv(console bool) (*env, error) {
	// 先读一次配置，拿到日志相关的设置
	boot := config.NewStore(cfgFile, zap.NewNop())
	bootCfg, err := boot.Load()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	file := logFile
	if file == "" {
		file = bootCfg.LogFile
	}
	log, err := logger.NewLogger(logger.Options{
		Debug:   debugMode || bootCfg.Debug,
		LogFile: file,
		Console: console,
	})
	if err != nil {
		return nil, err
	}

	store := config.NewStore(boot.Path(), log)
	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	return &env{store: store, cfg: cfg, logger: log}, nil
}

// newService 根据宿主配置创建翻译服务
func (e *env) newService(opts ...translation.Option) (*translation.Service, error) {
	base := []translation.Option{
		translation.WithLogger(e.logger),
		translation.WithCacheSize(e.cfg.CacheSize),
		translation.WithMaxConcurrency(e.cfg.MaxConcurrency),
		translation.WithRequestTimeout(e.cfg.Timeout()),
	}
	return translation.New(e.store, append(base, opts...)...)
}

// NewHostCommand 创建 host 命令
func NewHostCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "host [origin]",
		Short: "作为浏览器原生消息宿主运行",
		Long: `从标准输入读取浏览器发来的消息，并把响应写到标准输出。
浏览器启动宿主时会把扩展来源作为参数传入，该参数会被忽略。`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer func() {
				_ = e.logger.Sync()
			}()

			svc, err := e.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := commandContext(cmd)
			defer stop()

			if err := svc.Start(ctx); err != nil {
				return err
			}
			e.store.Watch()

			server := host.NewServer(svc, cmd.InOrStdin(), cmd.OutOrStdout(), e.logger, version)
			err = server.Serve(ctx)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

// NewInstallHostCommand 创建 install-host 命令
func NewInstallHostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install-host",
		Short: "为浏览器安装原生消息宿主清单",
		RunE: func(cmd *cobra.Command, args []string) error {
			browser, err := host.ParseBrowser(browserName)
			if err != nil {
				return err
			}

			binary := hostBinary
			if binary == "" {
				if binary, err = os.Executable(); err != nil {
					return fmt.Errorf("无法确定宿主程序路径: %w", err)
				}
			}
			if binary, err = filepath.Abs(binary); err != nil {
				return err
			}

			dir := manifestDir
			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				if dir, err = host.ManifestDir(browser, runtime.GOOS, home); err != nil {
					return err
				}
			}

			path, err := host.InstallManifest(dir, browser, binary, extensionIDs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写入宿主清单: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&browserName, "browser", string(host.BrowserChrome), "浏览器 (chrome, chromium, edge, brave, firefox)")
	cmd.Flags().StringSliceVar(&extensionIDs, "extension-id", nil, "允许连接的扩展 ID，可重复指定")
	cmd.Flags().StringVar(&manifestDir, "dir", "", "清单目录 (默认使用浏览器的用户级目录)")
	cmd.Flags().StringVar(&hostBinary, "binary", "", "宿主程序路径 (默认当前程序)")

	return cmd
}

// commandContext 带中断信号的上下文
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
