package agents

import "unicode/utf8"

// truncateAtRune 按字节上限截断，截断点回退到 rune 边界，保证输出是合法 UTF-8
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
