package models

import (
	"fmt"
	"strings"

	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// Form field names used by the view layer, masks and validation errors.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldCPF        = "cpf"
	FieldPhone      = "phone"
	FieldBirthDate  = "birth_date"
	FieldPostalCode = "postal_code"
	FieldStreet     = "street"
	FieldNumber     = "number"
	FieldDistrict   = "district"
	FieldCity       = "city"
	FieldState      = "state"
)

// Form holds the values as the user sees and edits them. BirthDate is in
// display format (DD/MM/YYYY).
type Form struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	CPF        string `json:"cpf"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date"`
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// FormFromCustomer populates a form from a stored record. A valid CPF is shown
// as NNN.NNN.NNN-NN whatever its stored spelling; a malformed stored date or
// CPF is shown as-is.
func FormFromCustomer(c Customer) Form {
	cpf := c.CPF
	if parsed, err := id.ParseCPF(cpf); err == nil {
		cpf = parsed.Formatted()
	}
	return Form{
		Name:       c.Name,
		Email:      c.Email,
		CPF:        cpf,
		Phone:      c.Phone,
		BirthDate:  id.FormatDisplayDate(c.BirthDate),
		PostalCode: c.Address.PostalCode,
		Street:     c.Address.Street,
		Number:     c.Address.Number,
		District:   c.Address.District,
		City:       c.Address.City,
		State:      c.Address.State,
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	for _, p := range f.fields() {
		*p.value = strings.TrimSpace(*p.value)
	}
	return f
}

// ToCustomer builds the record to transmit, converting the birth date to
// canonical format.
func (f Form) ToCustomer(customerID id.CustomerID) (Customer, error) {
	birth, err := id.ToCanonicalDate(f.BirthDate)
	if err != nil {
		return Customer{}, err
	}
	return Customer{
		ID:        customerID,
		Name:      f.Name,
		Email:     f.Email,
		CPF:       f.CPF,
		Phone:     f.Phone,
		BirthDate: birth,
		Address: Address{
			PostalCode: f.PostalCode,
			Street:     f.Street,
			Number:     f.Number,
			District:   f.District,
			City:       f.City,
			State:      f.State,
		},
	}, nil
}

// HasContent reports whether the user typed a name or email.
func (f Form) HasContent() bool {
	return strings.TrimSpace(f.Name) != "" || strings.TrimSpace(f.Email) != ""
}

// Get returns the value of a named field.
func (f Form) Get(field string) (string, error) {
	for _, p := range f.fields() {
		if p.name == field {
			return *p.value, nil
		}
	}
	return "", fmt.Errorf("unknown form field %q", field)
}

// With returns a copy with one field replaced.
func (f Form) With(field, value string) (Form, error) {
	for _, p := range f.fields() {
		if p.name == field {
			*p.value = value
			return f, nil
		}
	}
	return f, fmt.Errorf("unknown form field %q", field)
}

// IsField reports whether name is a known form field.
func IsField(name string) bool {
	_, err := Form{}.Get(name)
	return err == nil
}

type formField struct {
	name  string
	value *string
}

// fields binds names to the receiver's own copy; callers work on values.
func (f *Form) fields() []formField {
	return []formField{
		{FieldName, &f.Name},
		{FieldEmail, &f.Email},
		{FieldCPF, &f.CPF},
		{FieldPhone, &f.Phone},
		{FieldBirthDate, &f.BirthDate},
		{FieldPostalCode, &f.PostalCode},
		{FieldStreet, &f.Street},
		{FieldNumber, &f.Number},
		{FieldDistrict, &f.District},
		{FieldCity, &f.City},
		{FieldState, &f.State},
	}
}
