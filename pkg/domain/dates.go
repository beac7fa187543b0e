package domain

import (
	"strings"
	"time"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// Date layouts. Storage and transmission always use the canonical layout;
// the form always shows the display layout.
const (
	CanonicalDateLayout = "2006-01-02"
	DisplayDateLayout   = "02/01/2006"
)

// FormatDisplayDate turns YYYY-MM-DD into DD/MM/YYYY by reordering fields.
// Values that are not shaped like a canonical date are returned unchanged so a
// malformed stored value never breaks rendering.
func FormatDisplayDate(canonical string) string {
	parts := strings.Split(canonical, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return canonical
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// ToCanonicalDate turns DD/MM/YYYY into YYYY-MM-DD by reordering fields.
func ToCanonicalDate(display string) (string, error) {
	parts := strings.Split(display, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", dErrors.NewField("birth_date", "Data de nascimento inválida.")
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0], nil
}

// ParseDisplayDate parses a DD/MM/YYYY value into a calendar date at UTC midnight.
// Impossible dates such as 31/02/2000 are rejected.
func ParseDisplayDate(display string) (time.Time, error) {
	t, err := time.Parse(DisplayDateLayout, display)
	if err != nil {
		return time.Time{}, dErrors.NewField("birth_date", "Data de nascimento inválida.")
	}
	return t, nil
}
