package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CanonicalCategory trims surrounding whitespace, upper-cases the first letter
// and lower-cases the rest: " food " and "FOOD" both become "Food".
func CanonicalCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
