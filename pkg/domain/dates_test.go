package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateFormatters(t *testing.T) {
	t.Run("canonical to display and back is lossless", func(t *testing.T) {
		assert.Equal(t, "20/05/1990", FormatDisplayDate("1990-05-20"))
		back, err := ToCanonicalDate("20/05/1990")
		require.NoError(t, err)
		assert.Equal(t, "1990-05-20", back)
	})

	t.Run("round trips every day of a leap year", func(t *testing.T) {
		day := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		for day.Year() == 2000 {
			canonical := day.Format(CanonicalDateLayout)
			display := FormatDisplayDate(canonical)
			assert.Equal(t, day.Format(DisplayDateLayout), display)

			back, err := ToCanonicalDate(display)
			require.NoError(t, err)
			assert.Equal(t, canonical, back)
			day = day.AddDate(0, 0, 1)
		}
	})

	t.Run("malformed stored values pass through", func(t *testing.T) {
		assert.Equal(t, "", FormatDisplayDate(""))
		assert.Equal(t, "20/05/1990", FormatDisplayDate("20/05/1990"))
		assert.Equal(t, "1990-05", FormatDisplayDate("1990-05"))
	})

	t.Run("incomplete display values do not convert", func(t *testing.T) {
		_, err := ToCanonicalDate("20/05")
		assert.Error(t, err)
		_, err = ToCanonicalDate("")
		assert.Error(t, err)
	})
}

func TestParseDisplayDate(t *testing.T) {
	t.Run("parses a real date", func(t *testing.T) {
		got, err := ParseDisplayDate("29/02/2000")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("rejects impossible dates", func(t *testing.T) {
		_, err := ParseDisplayDate("31/02/2000")
		assert.Error(t, err)
		_, err = ParseDisplayDate("29/02/2001")
		assert.Error(t, err)
	})
}
