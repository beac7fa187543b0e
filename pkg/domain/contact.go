package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// emailShape is a permissive local@domain.tld check, not an RFC 5322 parser.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmailShaped reports whether s looks like local@domain.tld.
func IsEmailShaped(s string) bool {
	return emailShape.MatchString(s)
}

// IsNameRune reports whether r may appear in a customer name: ASCII letters,
// Latin-1 accented letters, space, hyphen and apostrophe.
func IsNameRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r == ' ', r == '-', r == '\'':
		return true
	case r == '×', r == '÷':
		return false
	case r >= 'À' && r <= 'ÿ':
		return true
	}
	return false
}

// IsValidName reports whether s is non-blank and made only of name runes.
func IsValidName(s string) bool {
	if strings.TrimSpace(s) == "" || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !IsNameRune(r) {
			return false
		}
	}
	return true
}

// IsValidPhone reports whether s carries a 10 or 11 digit Brazilian number.
func IsValidPhone(s string) bool {
	n := len(DigitsOnly(s))
	return n == 10 || n == 11
}
