package translation

import (
	"strings"

	"github.com/dlclark/regexp2"
)

type field int

const (
	fieldTranslation field = iota
	fieldIPA
	fieldMeaning
)

// 行首可以带 Markdown 标记或编号，例如 "**Translation:**"、"1. IPA: ..."、"- 含义："
const (
	labelPrefix = `^[\s*_#>\-\d.)]*(?:`
	labelSuffix = `)[*_]*\s*[:：][\s*_]*`
)

// labelPatterns 按优先级排列，同一行只取第一个命中的标签
var labelPatterns = []struct {
	field field
	re    *regexp2.Regexp
}{
	{fieldTranslation, regexp2.MustCompile(labelPrefix+`translation|翻译`+labelSuffix, regexp2.IgnoreCase)},
	{fieldIPA, regexp2.MustCompile(labelPrefix+`ipa|音标`+labelSuffix, regexp2.IgnoreCase)},
	{fieldMeaning, regexp2.MustCompile(labelPrefix+`meaning|含义`+labelSuffix, regexp2.IgnoreCase)},
}

// ParseReply 按行首标签把模型回复拆成翻译、音标和含义。
// 同一标签出现多次时后出现的覆盖前面的；没有任何翻译标签时整段回复作为翻译。
func ParseReply(raw string) Parsed {
	var parsed Parsed
	foundTranslation := false

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		f, value, ok := matchLabel(line)
		if !ok {
			continue
		}

		switch f {
		case fieldTranslation:
			parsed.Translation = value
			foundTranslation = true
		case fieldIPA:
			parsed.IPA = value
		case fieldMeaning:
			parsed.Meaning = value
		}
	}

	if !foundTranslation || parsed.Translation == "" {
		parsed.Translation = raw
	}

	return parsed
}

// matchLabel 返回命中的字段和去掉标签后的内容
func matchLabel(line string) (field, string, bool) {
	for _, p := range labelPatterns {
		m, err := p.re.FindStringMatch(line)
		if err != nil || m == nil {
			continue
		}
		// regexp2 的下标以 rune 计
		runes := []rune(line)
		return p.field, strings.TrimSpace(string(runes[m.Index+m.Length:])), true
	}
	return 0, "", false
}
