// Package pagecontext 从 HTML 页面中提取选中文本所在的上下文
package pagecontext

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxFallbackLength 找不到包含选中文本的容器时，正文截取的字符数
const MaxFallbackLength = 1000

// containerSelector 可以作为上下文的块级容器
const containerSelector = "p, div, article, section"

// Extract 返回包含 selected 的最内层容器的文本。
// 没有容器包含选中文本时返回正文前 MaxFallbackLength 个字符
func Extract(r io.Reader, selected string) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	needle := normalize(selected)
	if needle != "" {
		var found string
		doc.Find(containerSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !strings.Contains(Text(s.Nodes[0]), needle) {
				return true
			}
			inner := s.Find(containerSelector).FilterFunction(func(_ int, c *goquery.Selection) bool {
				return strings.Contains(Text(c.Nodes[0]), needle)
			})
			if inner.Length() > 0 {
				return true
			}
			found = Text(s.Nodes[0])
			return false
		})
		if found != "" {
			return found, nil
		}
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}
	return truncate(Text(body.Nodes[0]), MaxFallbackLength), nil
}

// Text 节点的可见文本，忽略脚本和样式，连续空白折叠为一个空格
func Text(n *html.Node) string {
	var b strings.Builder
	collect(n, &b)
	return normalize(b.String())
}

func collect(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, b)
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
