package tour

import (
	"strings"
	"unicode"
)

// SplitText 将文本切分为不超过 maxRunes 个字符的片段，优先在换行或空白处断开。
// 空文本返回 nil；maxRunes <= 0 时不切分。
func SplitText(s string, maxRunes int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{s}
	}

	var chunks []string
	runes := []rune(s)
	for len(runes) > 0 {
		if len(runes) <= maxRunes {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}
		cut := breakPoint(runes, maxRunes)
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = trimLeftSpace(runes[cut:])
	}
	return chunks
}

// SplitCaption 取出不超过 captionRunes 个字符的图片说明，其余部分作为正文返回
func SplitCaption(s string, captionRunes int) (caption, rest string) {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if captionRunes <= 0 || len(runes) <= captionRunes {
		return s, ""
	}
	cut := breakPoint(runes, captionRunes)
	return strings.TrimSpace(string(runes[:cut])), strings.TrimSpace(string(runes[cut:]))
}

// breakPoint 在 (limit/2, limit] 范围内寻找断点：先找换行，再找空白，都没有则硬切
func breakPoint(runes []rune, limit int) int {
	lower := limit / 2
	for i := limit; i > lower; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	for i := limit; i > lower; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return limit
}

func trimLeftSpace(runes []rune) []rune {
	for len(runes) > 0 && unicode.IsSpace(runes[0]) {
		runes = runes[1:]
	}
	return runes
}
