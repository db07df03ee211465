package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/internal/pagecontext"
	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

var (
	// translate 命令的标志
	contextText  string
	htmlFile     string
	onlyNames    []string
	allProviders bool
	jsonOutput   bool
	noSpinner    bool
	showStats    bool
)

// NewTranslateCommand 创建 translate 命令
func NewTranslateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [flags] <text...>",
		Short: "用所有启用的提供商翻译一段文本",
		Long: `用配置中启用的提供商同时翻译文本，并按配置顺序输出结果。
文本为 "-" 时从标准输入读取。

用法示例：
  select-translator translate serendipity --context "It was pure serendipity."
  select-translator translate --html page.html "bank"
  select-translator translate --only claude,gem "hello world"
  echo "good morning" | select-translator translate - --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTranslate,
	}

	cmd.Flags().StringVarP(&contextText, "context", "c", "", "选中文本所在的上下文")
	cmd.Flags().StringVar(&htmlFile, "html", "", "从 HTML 文件中提取上下文")
	cmd.Flags().StringSliceVar(&onlyNames, "only", nil, "只使用这些提供商（ID 或名称，支持模糊匹配）")
	cmd.Flags().BoolVar(&allProviders, "all", false, "包括未启用的提供商")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "以 JSON 输出结果")
	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "不显示等待动画")
	cmd.Flags().BoolVar(&showStats, "stats", false, "翻译后输出统计信息")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = e.logger.Sync()
	}()

	selected, err := selectedText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	pageContext := contextText
	if htmlFile != "" {
		f, err := os.Open(htmlFile)
		if err != nil {
			return fmt.Errorf("无法打开 HTML 文件: %w", err)
		}
		pageContext, err = pagecontext.Extract(f, selected)
		f.Close()
		if err != nil {
			return err
		}
		e.logger.Debug("已从 HTML 提取上下文", zap.Int("length", len(pageContext)))
	}
	if strings.TrimSpace(pageContext) == "" {
		pageContext = selected
	}

	req := translation.NewRequest(selected, pageContext)

	svc, err := e.newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := commandContext(cmd)
	defer stop()

	settings, err := svc.Settings(ctx)
	if err != nil {
		return err
	}

	var spinner *pterm.SpinnerPrinter
	if !noSpinner && !jsonOutput {
		spinner, _ = pterm.DefaultSpinner.WithWriter(cmd.ErrOrStderr()).Start("正在翻译...")
	}

	var results []translation.Result
	switch {
	case len(onlyNames) > 0:
		configs, selErr := selectProviders(settings.AIServices, onlyNames)
		if selErr != nil {
			err = selErr
			break
		}
		results, err = svc.TranslateWith(ctx, configs, req)
	case allProviders:
		results, err = svc.TranslateWith(ctx, settings.AIServices, req)
	default:
		results, err = svc.Translate(ctx, req)
	}

	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		shown := results
		if !settings.ShowMultipleResults {
			shown = firstSuccessful(results)
		}
		renderResults(out, shown, settings.ShowIPA)
	}

	if showStats {
		renderStats(out, svc.Stats())
	}

	if len(results) > 0 && allFailed(results) {
		return fmt.Errorf("所有提供商均翻译失败")
	}
	return nil
}

// selectedText 拼接参数作为选中文本，单个 "-" 表示从输入读取
func selectedText(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.Join(args, " "), nil
}

func allFailed(results []translation.Result) bool {
	for _, r := range results {
		if !r.Failed() {
			return false
		}
	}
	return true
}
