// Package format 展示用的格式化工具
package format

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Ordinal 英文序数后缀: 1st, 2nd, 3rd, 4th, 11th, 21st
func Ordinal(n int) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch abs % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch abs % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// Rank 带千位分隔符和序数后缀的名次，如 1,234th
func Rank(n int) string {
	return Count(n) + Ordinal(n)
}

// Count 带千位分隔符的整数
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Ratio 保留一位小数
func Ratio(f float64) string {
	return printer.Sprintf("%.1f", f)
}

// CaseInsensitiveGlob 生成大小写不敏感的Redis glob片段
// ASCII字母展开为 [xX]，glob 元字符转义，其它字符原样保留。
// Redis 按字节匹配，多字节字符放进 [] 会被拆成单个字节，所以只能原样写出。
func CaseInsensitiveGlob(query string) string {
	var b strings.Builder
	for _, r := range query {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		switch {
		case r < utf8.RuneSelf && unicode.IsLetter(r) && lower != upper:
			b.WriteByte('[')
			b.WriteRune(lower)
			b.WriteRune(upper)
			b.WriteByte(']')
		case strings.ContainsRune(`*?[]\^`, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
