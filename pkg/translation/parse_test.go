package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Parsed
	}{
		{
			name: "三个标签",
			raw:  "Translation: Hola\nIPA: /ˈoʊlə/\nMeaning: A greeting",
			want: Parsed{Translation: "Hola", IPA: "/ˈoʊlə/", Meaning: "A greeting"},
		},
		{
			name: "没有标签时整段作为翻译",
			raw:  "Hola, ¿cómo estás?",
			want: Parsed{Translation: "Hola, ¿cómo estás?"},
		},
		{
			name: "大小写不敏感",
			raw:  "TRANSLATION: Bonjour\nipa: /bɔ̃ʒuʁ/",
			want: Parsed{Translation: "Bonjour", IPA: "/bɔ̃ʒuʁ/"},
		},
		{
			name: "中文标签和全角冒号",
			raw:  "翻译：你好\n音标: /nǐ hǎo/\n含义：问候语",
			want: Parsed{Translation: "你好", IPA: "/nǐ hǎo/", Meaning: "问候语"},
		},
		{
			name: "Markdown加粗和编号",
			raw:  "1. **Translation:** 猫\n2. **IPA**: /kæt/\n- Meaning: a small domesticated feline",
			want: Parsed{Translation: "猫", IPA: "/kæt/", Meaning: "a small domesticated feline"},
		},
		{
			name: "空行被跳过",
			raw:  "\n\nTranslation: Hallo\n\n\r\nMeaning: Gruß\r\n",
			want: Parsed{Translation: "Hallo", Meaning: "Gruß"},
		},
		{
			name: "后出现的同名标签覆盖前面的",
			raw:  "Translation: first\nTranslation: second",
			want: Parsed{Translation: "second"},
		},
		{
			name: "只有音标没有翻译时回退到整段",
			raw:  "IPA: /kæt/\ncat means 猫",
			want: Parsed{Translation: "IPA: /kæt/\ncat means 猫", IPA: "/kæt/"},
		},
		{
			name: "标签不在行首时不识别",
			raw:  "The translation: is not labeled here",
			want: Parsed{Translation: "The translation: is not labeled here"},
		},
		{
			name: "空回复",
			raw:  "",
			want: Parsed{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReply(tt.raw))
		})
	}
}
