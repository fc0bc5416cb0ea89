// Package stringutils prepares untrusted text (tool output, user input)
// for prompts and logs.
package stringutils

import (
	"strings"
	"unicode"
)

// Sanitize drops NUL, C0 and C1 control characters other than tab, newline
// and carriage return, and any rune that is neither printable nor space.
func Sanitize(s string) string {
	if !strings.ContainsFunc(s, unwanted) {
		return s
	}

	return strings.Map(func(r rune) rune {
		if unwanted(r) {
			return -1
		}
		return r
	}, s)
}

func unwanted(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 32 || r == 127 || (r >= 128 && r <= 159):
		return true
	case r == unicode.ReplacementChar:
		return true
	default:
		return !unicode.IsPrint(r) && !unicode.IsSpace(r)
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Ellipsize is Truncate followed by "..." when anything was cut.
func Ellipsize(s string, n int) string {
	if t := Truncate(s, n); len(t) < len(s) {
		return t + "..."
	}
	return s
}
