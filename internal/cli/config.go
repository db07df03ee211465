package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/internal/config"
)

// NewConfigCommand 创建 config 命令组
func NewConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "管理配置文件",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "写入默认配置文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewStore(cfgFile, zap.NewNop())
			path, err := store.Init(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写入默认配置: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "覆盖已有的配置文件")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "以 YAML 显示当前配置，API 密钥被遮盖",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewStore(cfgFile, zap.NewNop()).Load()
			if err != nil {
				return err
			}
			return config.Export(cfg, config.FormatYAML, true, cmd.OutOrStdout())
		},
	}

	var (
		exportFormat string
		showSecrets  bool
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "导出当前配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			cfg, err := config.NewStore(cfgFile, zap.NewNop()).Load()
			if err != nil {
				return err
			}
			return config.Export(cfg, format, !showSecrets, cmd.OutOrStdout())
		},
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", string(config.FormatTOML), "导出格式 (toml, yaml, json)")
	exportCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "导出完整的 API 密钥")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "显示配置文件路径",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewStore(cfgFile, zap.NewNop())
			if _, err := store.Load(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd, exportCmd, pathCmd)
	return configCmd
}
