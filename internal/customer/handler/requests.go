package handler

import (
	"net/url"
	"strconv"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	pvalidation "github.com/pk-mender/desafiojr/pkg/platform/validation"
	s "github.com/pk-mender/desafiojr/pkg/string"
	"github.com/pk-mender/desafiojr/pkg/validation"
)

// URL parameters carrying list state.
const (
	paramName    = "name"
	paramCPF     = "cpf"
	paramPage    = "page"
	paramSort    = "sort"
	paramOrder   = "order"
	paramConfirm = "confirm"
)

// queryFromURL reads list state from the URL on top of initial. Missing or
// malformed values keep the initial value; the service normalizes the rest.
func queryFromURL(values url.Values, initial models.Query) (models.Query, error) {
	q := initial
	q.Filter.Name = values.Get(paramName)
	q.Filter.CPF = values.Get(paramCPF)
	if page, err := strconv.Atoi(values.Get(paramPage)); err == nil {
		q.Page = page
	}
	if col := values.Get(paramSort); col != "" {
		q.Sort = models.Sort{Column: col, Direction: models.SortDirection(values.Get(paramOrder))}
	}
	if err := pvalidation.CheckLengths(pvalidation.MaxFilterLength,
		paramName, q.Filter.Name,
		paramCPF, q.Filter.CPF,
	); err != nil {
		return q, err
	}
	if err := pvalidation.CheckStringLength(paramSort, q.Sort.Column, pvalidation.MaxSortColumnLength); err != nil {
		return q, err
	}
	return q, nil
}

// QueryValues renders q back into URL parameters.
func QueryValues(q models.Query) url.Values {
	v := url.Values{}
	if q.Filter.Name != "" {
		v.Set(paramName, q.Filter.Name)
	}
	if q.Filter.CPF != "" {
		v.Set(paramCPF, q.Filter.CPF)
	}
	v.Set(paramPage, strconv.Itoa(q.Page))
	v.Set(paramSort, q.Sort.Column)
	v.Set(paramOrder, string(q.Sort.Direction))
	return v
}

type SearchRequest struct {
	Name string `json:"name" validate:"max=120"`
	CPF  string `json:"cpf" validate:"max=120"`
}

func (r *SearchRequest) Normalize() {
	s.TrimStrings(&r.Name, &r.CPF)
}

func (r *SearchRequest) Validate() error {
	return validation.Validate(r)
}

// SortRequest names the column header that was clicked. Unknown columns pass
// here and are refused by the list service's whitelist.
type SortRequest struct {
	Column string `json:"column" validate:"required,max=32"`
}

func (r *SortRequest) Normalize() {
	s.TrimStrings(&r.Column)
}

func (r *SortRequest) Validate() error {
	return validation.Validate(r)
}

// PaginateRequest carries the pagination metadata the browser displayed.
// Without TotalKnown the move is refused as a no-op.
type PaginateRequest struct {
	Direction  models.Direction `json:"direction" validate:"required,oneof=next previous"`
	Total      int              `json:"total" validate:"min=0"`
	TotalKnown bool             `json:"total_known"`
}

func (r *PaginateRequest) Validate() error {
	return validation.Validate(r)
}

// OpenFormRequest opens an edit form when ID is set, a create form otherwise.
type OpenFormRequest struct {
	ID string `json:"id" validate:"omitempty,max=64"`
}

func (r *OpenFormRequest) Normalize() {
	s.TrimStrings(&r.ID)
}

func (r *OpenFormRequest) Validate() error {
	return validation.Validate(r)
}

type InputRequest struct {
	Field string `json:"field" validate:"required,oneof=name email cpf phone birth_date postal_code street number district city state"`
	Value string `json:"value" validate:"max=255"`
}

func (r *InputRequest) Validate() error {
	return validation.Validate(r)
}

type AfterSaveRequest struct {
	Another bool `json:"another"`
}
