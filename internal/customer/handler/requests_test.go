package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

func TestRequestValidation(t *testing.T) {
	long := func(n int) string { return strings.Repeat("a", n) }

	cases := []struct {
		name  string
		req   interface{ Validate() error }
		field string
	}{
		{"search within limits", &SearchRequest{Name: long(120), CPF: "529"}, ""},
		{"search name too long", &SearchRequest{Name: long(121)}, "name"},
		{"search cpf too long", &SearchRequest{CPF: long(121)}, "cpf"},
		{"sort column", &SortRequest{Column: "nome"}, ""},
		{"sort without column", &SortRequest{}, "column"},
		{"sort column too long", &SortRequest{Column: long(33)}, "column"},
		{"paginate next", &PaginateRequest{Direction: "next", Total: 30, TotalKnown: true}, ""},
		{"paginate previous", &PaginateRequest{Direction: "previous"}, ""},
		{"paginate sideways", &PaginateRequest{Direction: "sideways"}, "direction"},
		{"paginate without direction", &PaginateRequest{}, "direction"},
		{"paginate negative total", &PaginateRequest{Direction: "next", Total: -1}, "total"},
		{"open create form", &OpenFormRequest{}, ""},
		{"open edit form", &OpenFormRequest{ID: "7"}, ""},
		{"open id too long", &OpenFormRequest{ID: long(65)}, "id"},
		{"input known field", &InputRequest{Field: "birth_date", Value: "20/05/1990"}, ""},
		{"input empty value", &InputRequest{Field: "number"}, ""},
		{"input unknown field", &InputRequest{Field: "is_admin", Value: "1"}, "field"},
		{"input without field", &InputRequest{Value: "x"}, "field"},
		{"input value too long", &InputRequest{Field: "street", Value: long(256)}, "value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
			assert.Equal(t, tc.field, dErrors.FieldOf(err))
		})
	}
}

func TestSearchRequestLimitCountsRunes(t *testing.T) {
	req := &SearchRequest{Name: strings.Repeat("ç", 120)}
	assert.NoError(t, req.Validate())
}
