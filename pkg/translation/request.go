package translation

import (
	"strings"

	"golang.org/x/text/cases"
)

// NewRequest 从选中文本和上下文构造请求。
// 单词在上下文中的位置取第一个与之互相包含的分词，大小写不敏感。
func NewRequest(selected, pageContext string) Request {
	selected = strings.TrimSpace(selected)
	req := Request{
		SelectedText: selected,
		Context:      pageContext,
		IsWord:       selected != "" && len(strings.Fields(selected)) == 1,
	}

	if req.IsWord {
		if idx := wordIndex(selected, pageContext); idx >= 0 {
			req.WordIndex = &idx
		}
	}

	return req
}

func wordIndex(word, pageContext string) int {
	// Caser 有状态，不能跨 goroutine 共享
	folder := cases.Fold()
	needle := folder.String(word)
	for i, token := range strings.Fields(pageContext) {
		token = folder.String(token)
		if strings.Contains(token, needle) || strings.Contains(needle, token) {
			return i
		}
	}
	return -1
}
