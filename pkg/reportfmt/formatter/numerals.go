package formatter

import (
	"fmt"
	"strings"
)

var cnDigits = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// chineseNumeral renders 1..99 as Chinese numerals; larger values fall back
// to Arabic digits.
func chineseNumeral(n int) string {
	switch {
	case n <= 0 || n >= 100:
		return fmt.Sprint(n)
	case n < 10:
		return cnDigits[n]
	}
	var sb strings.Builder
	tens, ones := n/10, n%10
	if tens > 1 {
		sb.WriteString(cnDigits[tens])
	}
	sb.WriteString("十")
	if ones > 0 {
		sb.WriteString(cnDigits[ones])
	}
	return sb.String()
}

// headingPrefix returns the numbering prefix for the n-th heading at level.
func headingPrefix(level, n int) string {
	switch level {
	case 1:
		return chineseNumeral(n) + "、"
	case 2:
		return "（" + chineseNumeral(n) + "）"
	default:
		return fmt.Sprintf("%d.", n)
	}
}
