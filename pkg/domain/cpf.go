package domain

import (
	"strconv"
	"strings"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// CPFLength is the number of decimal digits in a CPF, check digits included.
const CPFLength = 11

// CPF is a checksum-valid Brazilian taxpayer number held as its 11 digits.
type CPF string

// ParseCPF strips formatting and validates length and check digits.
func ParseCPF(s string) (CPF, error) {
	digits := DigitsOnly(s)
	if !validCPFDigits(digits) {
		return "", dErrors.NewField("cpf", "CPF inválido.")
	}
	return CPF(digits), nil
}

// IsValidCPF reports whether s, formatted or not, is a valid CPF.
func IsValidCPF(s string) bool {
	return validCPFDigits(DigitsOnly(s))
}

// String returns the bare digits.
func (c CPF) String() string { return string(c) }

// Formatted returns the NNN.NNN.NNN-NN display form.
func (c CPF) Formatted() string {
	s := string(c)
	if len(s) != CPFLength {
		return s
	}
	return s[0:3] + "." + s[3:6] + "." + s[6:9] + "-" + s[9:11]
}

// DigitsOnly drops every character that is not an ASCII decimal digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// CompleteCPF appends both check digits to a nine digit base. It returns an
// empty CPF when base is anything but nine bare digits.
func CompleteCPF(base string) CPF {
	d := DigitsOnly(base)
	if len(d) != CPFLength-2 || len(base) != len(d) {
		return ""
	}
	d += strconv.Itoa(cpfCheckDigit(d, 9))
	d += strconv.Itoa(cpfCheckDigit(d, 10))
	return CPF(d)
}

func validCPFDigits(d string) bool {
	if len(d) != CPFLength {
		return false
	}
	if strings.Count(d, d[:1]) == CPFLength {
		return false
	}
	return cpfCheckDigit(d, 9) == int(d[9]-'0') && cpfCheckDigit(d, 10) == int(d[10]-'0')
}

// cpfCheckDigit computes the check digit over the first n digits with
// weights n+1 down to 2.
func cpfCheckDigit(d string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(d[i]-'0') * (n + 1 - i)
	}
	rem := (sum * 10) % 11
	if rem >= 10 {
		return 0
	}
	return rem
}
