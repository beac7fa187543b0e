package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// HashCPF returns a short stable digest of a CPF for logs, spans and audit
// events. Formatting is ignored so "529.982.247-25" and "52998224725" hash
// the same. Empty input yields "".
func HashCPF(cpf string) string {
	digits := onlyDigits(cpf)
	if digits == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(digits))
	return hex.EncodeToString(sum[:8])
}

// MaskCPF keeps the middle block visible and hides the rest,
// e.g. "52998224725" -> "***.982.247-**".
// Anything that is not 11 digits is fully masked.
func MaskCPF(cpf string) string {
	digits := onlyDigits(cpf)
	if len(digits) != 11 {
		return "***"
	}
	return "***." + digits[3:6] + "." + digits[6:9] + "-**"
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
