package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

// renderStats 输出本次运行的缓存和提供商统计
func renderStats(w io.Writer, stats translation.Stats) {
	fmt.Fprintln(w)
	headingColor.Fprintln(w, "📊 Statistics")
	headingColor.Fprintln(w, strings.Repeat("=", 50))

	hitRate := 0.0
	if total := stats.Cache.Hits + stats.Cache.Misses; total > 0 {
		hitRate = float64(stats.Cache.Hits) / float64(total) * 100
	}
	printSection(w, "💾 Cache", [][]string{
		{"Translations", formatNumber(stats.Translations)},
		{"Entries", fmt.Sprintf("%d / %d", stats.Cache.Size, stats.Cache.Capacity)},
		{"Hit Rate", fmt.Sprintf("%.1f%% (%d hits, %d misses)", hitRate, stats.Cache.Hits, stats.Cache.Misses)},
		{"Evictions", formatNumber(stats.Cache.Evictions)},
	})

	if len(stats.Providers) == 0 {
		return
	}

	fmt.Fprintln(w)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Provider", "Model", "Requests", "Success", "Empty", "Avg", "Min", "Max", "Errors"})
	for _, ps := range stats.Providers {
		t.AppendRow(table.Row{
			ps.ProviderID,
			ps.ModelName,
			formatNumber(ps.TotalRequests),
			fmt.Sprintf("%.1f%%", ps.SuccessRate()),
			formatNumber(ps.EmptyResponses),
			formatDuration(ps.AverageLatency),
			formatDuration(ps.MinLatency),
			formatDuration(ps.MaxLatency),
			formatErrorTypes(ps.ErrorTypes),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// printSection 打印一个统计部分
func printSection(w io.Writer, title string, data [][]string) {
	sectionColor := headingColor
	sectionColor.Fprintf(w, "%s\n", title)

	// 计算最大标签长度
	maxLabelLen := 0
	for _, row := range data {
		if len(row[0]) > maxLabelLen {
			maxLabelLen = len(row[0])
		}
	}

	for _, row := range data {
		label := fmt.Sprintf("  %-*s", maxLabelLen, row[0])
		mutedColor.Fprintf(w, "%s: ", label)
		fmt.Fprintln(w, row[1])
	}
}

// formatErrorTypes 把错误类型统计格式化为 "kind×n"
func formatErrorTypes(types map[string]int64) string {
	if len(types) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s×%d", k, types[k]))
	}
	return strings.Join(parts, ", ")
}

// formatDuration 格式化耗时
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%.1fm", d.Minutes())
}

// formatNumber 格式化数字（添加千位分隔符）
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(char)
	}
	return result.String()
}
