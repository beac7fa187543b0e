// Package mask normalizes form input on every keystroke. Each mask takes the
// field's full current value and re-derives the formatted value from it, so
// applying a mask to its own output changes nothing.
package mask

import (
	"strings"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/pkg/domain"
)

const (
	cpfDigits        = 11
	phoneDigits      = 11
	dateDigits       = 8
	postalCodeDigits = 8

	// PostalCodeLength is the formatted length that triggers an address lookup.
	PostalCodeLength = 9
)

// Name drops every rune that cannot appear in a name.
func Name(v string) string {
	return strings.Map(func(r rune) rune {
		if domain.IsNameRune(r) {
			return r
		}
		return -1
	}, v)
}

// CPF formats up to 11 digits as NNN.NNN.NNN-NN, progressively.
func CPF(v string) string {
	d := digits(v, cpfDigits)
	switch {
	case len(d) > 9:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	case len(d) > 6:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	case len(d) > 3:
		return d[:3] + "." + d[3:]
	default:
		return d
	}
}

// Phone formats up to 11 digits as (DD) NNNN-NNNN, or (DD) NNNNN-NNNN once
// the eleventh digit arrives.
func Phone(v string) string {
	d := digits(v, phoneDigits)
	switch {
	case len(d) > 10:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case len(d) > 6:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case len(d) > 2:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) > 0:
		return "(" + d
	default:
		return ""
	}
}

// Date formats up to 8 digits as DD/MM/YYYY, progressively.
func Date(v string) string {
	d := digits(v, dateDigits)
	switch {
	case len(d) > 4:
		return d[:2] + "/" + d[2:4] + "/" + d[4:]
	case len(d) > 2:
		return d[:2] + "/" + d[2:]
	default:
		return d
	}
}

// PostalCode formats up to 8 digits as NNNNN-NNN.
func PostalCode(v string) string {
	d := digits(v, postalCodeDigits)
	if len(d) > 5 {
		return d[:5] + "-" + d[5:]
	}
	return d
}

// PostalCodeComplete reports whether a masked postal code is full length.
func PostalCodeComplete(masked string) bool {
	return len(masked) == PostalCodeLength
}

// Apply runs the mask for field. Fields without a mask are returned as typed.
func Apply(field, v string) string {
	switch field {
	case models.FieldName:
		return Name(v)
	case models.FieldCPF:
		return CPF(v)
	case models.FieldPhone:
		return Phone(v)
	case models.FieldBirthDate:
		return Date(v)
	case models.FieldPostalCode:
		return PostalCode(v)
	default:
		return v
	}
}

func digits(v string, max int) string {
	d := domain.DigitsOnly(v)
	if len(d) > max {
		d = d[:max]
	}
	return d
}
