package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/select-translator/internal/config"
	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/models"
)

// NewProvidersCommand 创建 providers 命令
func NewProvidersCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "列出配置的 AI 提供商",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(true)
			if err != nil {
				return err
			}

			services := e.cfg.Settings.AIServices
			if asJSON {
				masked := make([]providers.Config, len(services))
				for i, svc := range services {
					svc.APIKey = config.MaskKey(svc.APIKey)
					masked[i] = svc
				}
				return writeJSON(cmd.OutOrStdout(), masked)
			}
			renderProviders(cmd.OutOrStdout(), services)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

// NewModelsCommand 创建 models 命令
func NewModelsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models <provider>",
		Short: "查询提供商可用的模型",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(true)
			if err != nil {
				return err
			}

			selected, err := selectProviders(e.cfg.Settings.AIServices, args)
			if err != nil {
				return err
			}
			cfg := selected[0]

			ctx, stop := commandContext(cmd)
			defer stop()

			list, err := models.NewLister(e.cfg.Timeout()).List(ctx, cfg)
			if err != nil {
				return fmt.Errorf("查询 %s 的模型失败: %w", cfg.DisplayName(), err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			renderModels(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}
