// Package postcode looks up Brazilian postal codes (CEP) and returns the
// address fields used to back-fill the customer form.
package postcode

import (
	"errors"
	"strings"

	"github.com/pk-mender/desafiojr/pkg/domain"
)

// CodeLength is the number of digits in a CEP.
const CodeLength = 8

// ErrNotFound is returned when the lookup service has no address for a code.
var ErrNotFound = errors.New("postcode not found")

// ErrInvalidCode is returned for inputs that do not hold exactly eight digits.
var ErrInvalidCode = errors.New("postcode must have 8 digits")

// ErrUnavailable is returned without calling upstream while its circuit is open.
var ErrUnavailable = errors.New("postcode lookup unavailable")

// Address is what a lookup yields. PostalCode holds the formatted CEP.
type Address struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// Normalize strips formatting and checks the digit count.
func Normalize(cep string) (string, error) {
	digits := domain.DigitsOnly(cep)
	if len(digits) != CodeLength {
		return "", ErrInvalidCode
	}
	return digits, nil
}

// Format renders eight digits as NNNNN-NNN.
func Format(digits string) string {
	if len(digits) != CodeLength {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

// IsEmpty reports whether the address carries no usable field.
func (a Address) IsEmpty() bool {
	return strings.TrimSpace(a.Street+a.District+a.City+a.State) == ""
}
