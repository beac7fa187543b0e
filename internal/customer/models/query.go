package models

import "strings"

// Sortable columns, named as the customer API names them.
const (
	SortByName      = "nome"
	SortByEmail     = "email"
	SortByCPF       = "cpf"
	SortByPhone     = "telefone"
	SortByBirthDate = "dataNascimento"
)

// SortColumns lists the columns in table order.
var SortColumns = []string{SortByName, SortByEmail, SortByCPF, SortByBirthDate, SortByPhone}

// IsSortColumn reports whether col is sortable.
func IsSortColumn(col string) bool {
	for _, c := range SortColumns {
		if c == col {
			return true
		}
	}
	return false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Indicator is the glyph shown next to the sorted column header.
func (d SortDirection) Indicator() string {
	if d == SortDesc {
		return " ▼"
	}
	return " ▲"
}

type Sort struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// Direction of a pagination step.
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// Query is the list page state: filter, sort and page. It is a value;
// every transition returns a new Query and leaves the receiver unchanged.
type Query struct {
	Filter   Filter `json:"filter"`
	Sort     Sort   `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// DefaultSort is by name, ascending.
var DefaultSort = Sort{Column: SortByName, Direction: SortAsc}

// NewQuery returns the initial state: no filter, default sort, page 1.
func NewQuery(pageSize int) Query {
	if pageSize < 1 {
		pageSize = 1
	}
	return Query{Sort: DefaultSort, Page: 1, PageSize: pageSize}
}

// Normalized repairs out-of-range values that may arrive from a URL.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if !IsSortColumn(q.Sort.Column) {
		q.Sort = DefaultSort
	}
	if q.Sort.Direction != SortDesc {
		q.Sort.Direction = SortAsc
	}
	q.Filter.Name = strings.TrimSpace(q.Filter.Name)
	q.Filter.CPF = strings.TrimSpace(q.Filter.CPF)
	return q
}

// WithFilter applies a new filter and returns to page 1.
func (q Query) WithFilter(name, cpf string) Query {
	q.Filter = Filter{Name: strings.TrimSpace(name), CPF: strings.TrimSpace(cpf)}
	q.Page = 1
	return q
}

// Cleared drops the filter and returns to page 1. Sort is kept.
func (q Query) Cleared() Query {
	q.Filter = Filter{}
	q.Page = 1
	return q
}

// SortedBy toggles the direction when col is already selected, otherwise
// selects col ascending. Either way the page resets to 1.
func (q Query) SortedBy(col string) Query {
	if q.Sort.Column == col {
		if q.Sort.Direction == SortAsc {
			q.Sort.Direction = SortDesc
		} else {
			q.Sort.Direction = SortAsc
		}
	} else {
		q.Sort = Sort{Column: col, Direction: SortAsc}
	}
	q.Page = 1
	return q
}

// TotalPages is ceil(total/pageSize), never less than 1.
func (q Query) TotalPages(total int) int {
	if q.PageSize < 1 || total <= 0 {
		return 1
	}
	pages := (total + q.PageSize - 1) / q.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// HasNext reports whether a following page exists for total records.
func (q Query) HasNext(total int) bool {
	return total > 0 && q.Page < q.TotalPages(total)
}

// HasPrevious reports whether the query is past page 1.
func (q Query) HasPrevious() bool {
	return q.Page > 1
}

// Step moves one page in dir. The bool is false, and the query unchanged,
// when the move is not possible.
func (q Query) Step(dir Direction, total int) (Query, bool) {
	switch dir {
	case DirectionNext:
		if !q.HasNext(total) {
			return q, false
		}
		q.Page++
		return q, true
	case DirectionPrevious:
		if !q.HasPrevious() {
			return q, false
		}
		q.Page--
		return q, true
	default:
		return q, false
	}
}

// SortIndicators maps every sortable column to its header suffix. Only the
// active column has a glyph.
func (q Query) SortIndicators() map[string]string {
	out := make(map[string]string, len(SortColumns))
	for _, c := range SortColumns {
		out[c] = ""
	}
	if IsSortColumn(q.Sort.Column) {
		out[q.Sort.Column] = q.Sort.Direction.Indicator()
	}
	return out
}
