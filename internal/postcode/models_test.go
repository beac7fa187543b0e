package postcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	digits, err := Normalize("01001-000")
	require.NoError(t, err)
	assert.Equal(t, "01001000", digits)

	_, err = Normalize("0100100")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = Normalize("")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "01001-000", Format("01001000"))
	assert.Equal(t, "123", Format("123"))
}

func TestAddressIsEmpty(t *testing.T) {
	assert.True(t, Address{PostalCode: "01001-000"}.IsEmpty())
	assert.False(t, Address{City: "São Paulo"}.IsEmpty())
}
