// Package string holds small helpers for request normalisation.
package string

import (
	"strings"
	"unicode"
)

// TrimStrings trims surrounding whitespace from every target in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// ToSnakeCase turns a Go field name such as BirthDate into birth_date, the
// name the JSON views use for the same field.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
