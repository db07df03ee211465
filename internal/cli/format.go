package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-runewidth"

	"github.com/nerdneilsfield/select-translator/internal/config"
	"github.com/nerdneilsfield/select-translator/pkg/providers"
	"github.com/nerdneilsfield/select-translator/pkg/providers/models"
	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

// maxCellWidth 表格单元格最大显示宽度
const maxCellWidth = 60

var (
	errorColor   = color.New(color.FgRed)
	okColor      = color.New(color.FgGreen)
	mutedColor   = color.New(color.FgHiBlack)
	headingColor = color.New(color.FgCyan, color.Bold)
)

// truncate 折叠空白后按显示宽度截断，中日韩字符占两列
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}

// renderResults 以表格输出翻译结果
func renderResults(w io.Writer, results []translation.Result, showIPA bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, mutedColor.Sprint("没有启用的提供商"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{"提供商", "译文"}
	if showIPA {
		header = append(header, "音标")
	}
	header = append(header, "释义")
	t.AppendHeader(header)

	for _, r := range results {
		row := table.Row{r.ServiceName}
		if r.Failed() {
			row = append(row, errorColor.Sprint(truncate(r.Error, maxCellWidth)))
			if showIPA {
				row = append(row, "")
			}
			row = append(row, "")
			t.AppendRow(row)
			continue
		}

		row = append(row, truncate(r.Translation, maxCellWidth))
		if showIPA {
			row = append(row, r.IPA)
		}
		row = append(row, truncate(r.Meaning, maxCellWidth))
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

// firstSuccessful 只显示一个结果时取第一个成功的，全部失败时取第一个
func firstSuccessful(results []translation.Result) []translation.Result {
	for _, r := range results {
		if !r.Failed() {
			return []translation.Result{r}
		}
	}
	if len(results) > 0 {
		return results[:1]
	}
	return results
}

// renderProviders 列出配置的提供商，API 密钥被遮盖
func renderProviders(w io.Writer, services []providers.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "名称", "类型", "模型", "启用", "接口地址", "API 密钥"})

	for _, svc := range services {
		enabled := mutedColor.Sprint("否")
		if svc.Enabled {
			enabled = okColor.Sprint("是")
		}
		t.AppendRow(table.Row{
			svc.ID,
			svc.DisplayName(),
			string(providers.KindOf(svc)),
			svc.Model,
			enabled,
			truncate(svc.BaseURL, maxCellWidth),
			config.MaskKey(svc.APIKey),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

// renderModels 输出模型列表
func renderModels(w io.Writer, list []models.Model) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "模型", "所有者"})
	for i, m := range list {
		t.AppendRow(table.Row{i + 1, m.ID, m.OwnedBy})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// writeJSON 输出缩进的 JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// selectProviders 按名称挑选提供商。先精确匹配 ID，再对 ID 和名称做模糊匹配
func selectProviders(services []providers.Config, names []string) ([]providers.Config, error) {
	byID := make(map[string]int, len(services))
	targets := make([]string, 0, len(services)*2)
	owners := make([]int, 0, len(services)*2)
	for i, svc := range services {
		byID[strings.ToLower(svc.ID)] = i
		targets = append(targets, svc.ID, svc.DisplayName())
		owners = append(owners, i, i)
	}

	var selected []providers.Config
	seen := make(map[int]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		idx, ok := byID[strings.ToLower(name)]
		if !ok {
			ranks := fuzzy.RankFindNormalizedFold(name, targets)
			if len(ranks) == 0 {
				return nil, fmt.Errorf("没有匹配 %q 的提供商", name)
			}
			sort.Sort(ranks)
			idx = owners[ranks[0].OriginalIndex]
		}

		if !seen[idx] {
			seen[idx] = true
			selected = append(selected, services[idx])
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("未指定提供商")
	}
	return selected, nil
}
