package translation

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

// 模板占位符
const (
	PlaceholderText         = "{text}"
	PlaceholderContext      = "{context}"
	PlaceholderInstructions = "{additionalInstructions}"
)

// DefaultPrompt 提供商未设置自定义模板时使用
const DefaultPrompt = `Translate the following text and provide context:
Text: {text}
Context: {context}
{additionalInstructions}

Please provide:
1. Translation
2. IPA pronunciation (if applicable)
3. Detailed meaning explanation`

const phraseInstructions = "This is a sentence or phrase. Please provide an accurate translation."

// Instructions 根据请求类型生成附加指令
func Instructions(req Request) string {
	if !req.IsWord {
		return phraseInstructions
	}
	if req.WordIndex == nil {
		return "This is a single word in the context. Please provide the most accurate meaning based on the context and IPA pronunciation."
	}
	return fmt.Sprintf("This is a single word at position %d in the context. Please provide the most accurate meaning based on the context and IPA pronunciation.", *req.WordIndex)
}

// BuildPrompt 把请求代入模板。每个占位符只替换第一次出现，模板缺少占位符时直接跳过
func BuildPrompt(cfg providers.Config, req Request) string {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	prompt = strings.Replace(prompt, PlaceholderText, req.SelectedText, 1)
	prompt = strings.Replace(prompt, PlaceholderContext, req.Context, 1)
	prompt = strings.Replace(prompt, PlaceholderInstructions, Instructions(req), 1)

	return prompt
}
