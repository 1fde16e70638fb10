// Package strcase converts Go identifiers to the snake_case keys used in
// validation messages.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts an identifier to lower snake_case. Runs of capitals are
// kept together, so "HTTPServer" becomes "http_server" and "userID" "user_id".
func ToLowerSnake(s string) string {
	return strings.ToLower(strings.Join(words(s), "_"))
}

// words splits an identifier at lower-to-upper transitions and before the last
// capital of an acronym that starts a new word.
func words(s string) []string {
	rs := []rune(s)
	var out []string
	start := 0
	for i := 1; i < len(rs); i++ {
		if !unicode.IsUpper(rs[i]) {
			continue
		}
		afterLower := unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1])
		endsAcronym := unicode.IsUpper(rs[i-1]) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
		if afterLower || endsAcronym {
			out = append(out, string(rs[start:i]))
			start = i
		}
	}
	if start < len(rs) {
		out = append(out, string(rs[start:]))
	}
	return out
}
