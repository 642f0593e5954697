package util

import "unicode/utf8"

// TruncateRunes keeps the first n characters (code points) of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Ellipsize truncates s to n characters and marks the cut with "…".
func Ellipsize(s string, n int) string {
	t := TruncateRunes(s, n)
	if len(t) < len(s) {
		return t + "…"
	}
	return s
}
