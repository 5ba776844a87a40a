package util

import (
	"regexp"
	"strings"
)

var (
	punctRe    = regexp.MustCompile(`[\p{P}\p{S}]+`)
	modelTagRe = regexp.MustCompile(`<\|[^|<>]*\|>`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// RemoveAllPunctuation 移除所有标点符号
func RemoveAllPunctuation(text string) string {
	return punctRe.ReplaceAllString(text, "")
}

// CleanTranscript 去掉转写文本里残留的 <|xxx|> 标签并合并空白
func CleanTranscript(text string) string {
	text = modelTagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
