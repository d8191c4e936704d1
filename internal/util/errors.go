package util

import (
	"fmt"
	"strings"
)

// Summarize reduces an error (or recovered panic value) to a single-line message of at most maxLen runes
func Summarize(v interface{}, maxLen int) string {
	if v == nil {
		return ""
	}

	var msg string
	switch e := v.(type) {
	case error:
		msg = e.Error()
	case string:
		msg = e
	default:
		msg = fmt.Sprintf("%v", e)
	}

	msg = strings.Join(strings.Fields(msg), " ")
	return Truncate(msg, maxLen)
}

// Truncate returns at most maxLen runes of s
func Truncate(s string, maxLen int) string {
	if maxLen < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
