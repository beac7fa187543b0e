package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (16 KB).
	// A full customer form is well under 1 KB.
	MaxBodySize = 16 * 1024
)

// Field length limits applied before any rule runs.
const (
	MaxNameLength        = 120
	MaxEmailLength       = 255
	MaxFilterLength      = 120
	MaxFieldValueLength  = 255
	MaxCustomerIDLength  = 64
	MaxSortColumnLength  = 32
	MaxAddressPartLength = 200
)

// CheckStringLength validates that a string does not exceed max runes.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.NewField(fieldName, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckLengths runs CheckStringLength over name/value pairs and returns the first failure.
func CheckLengths(max int, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := CheckStringLength(pairs[i], pairs[i+1], max); err != nil {
			return err
		}
	}
	return nil
}
