package tour

import (
	"strings"
	"unicode"
)

func narrationAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 'а' && r <= 'я', r >= 'А' && r <= 'Я', r == 'ё', r == 'Ё':
		return true
	case unicode.IsSpace(r):
		return true
	}
	return strings.ContainsRune(`.,:"«»`, r)
}

// SanitizeNarration 删除拉丁/西里尔字母、数字、空白和 . , : " « » 以外的字符。
// 空白按 Unicode 判断，不间断空格和行分隔符同样保留。结果再次清洗不会变化。
func SanitizeNarration(s string) string {
	return strings.Map(func(r rune) rune {
		if narrationAllowed(r) {
			return r
		}
		return -1
	}, s)
}
