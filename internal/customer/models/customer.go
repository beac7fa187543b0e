package models

import (
	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// Customer is a record as stored by the customer API. BirthDate is canonical
// (YYYY-MM-DD); CPF and Phone keep the display formatting the form produced.
type Customer struct {
	ID        id.CustomerID
	Name      string
	Email     string
	CPF       string
	Phone     string
	BirthDate string
	Address   Address
}

// Address is the optional postal block back-filled from a postcode lookup.
type Address struct {
	PostalCode string
	Street     string
	Number     string
	District   string
	City       string
	State      string
}

// IsNew reports whether the record has not been persisted yet.
func (c Customer) IsNew() bool {
	return c.ID.IsNil()
}

// Filter narrows a list retrieval. Empty fields do not filter.
type Filter struct {
	Name string `json:"name,omitempty"`
	CPF  string `json:"cpf,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filter) IsEmpty() bool {
	return f.Name == "" && f.CPF == ""
}

// CPFMatch selects how a CPF filter is matched by the customer API.
type CPFMatch string

const (
	CPFMatchExact CPFMatch = "exact"
	CPFMatchLike  CPFMatch = "like"
)

// ParseCPFMatch defaults to exact for anything but "like".
func ParseCPFMatch(s string) CPFMatch {
	if CPFMatch(s) == CPFMatchLike {
		return CPFMatchLike
	}
	return CPFMatchExact
}

// Page is one slice of a list retrieval plus the total matching count.
type Page struct {
	Records    []Customer
	Total      int
	TotalKnown bool // false when the API sent no total count
}
