package testutil

import (
	"time"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// CPFs with valid check digits, in display format.
const (
	ValidCPF1 = "529.982.247-25"
	ValidCPF2 = "111.444.777-35"
	ValidCPF3 = "390.533.447-05"
)

// BirthDateYearsAgo returns the display-format date exactly years before now.
func BirthDateYearsAgo(now time.Time, years int) string {
	return now.AddDate(-years, 0, 0).Format(id.DisplayDateLayout)
}

// ValidForm returns a form that passes every validation rule at now.
func ValidForm(now time.Time) models.Form {
	return models.Form{
		Name:      "João Silva",
		Email:     "a@b.com",
		CPF:       ValidCPF1,
		Phone:     "(11) 98765-4321",
		BirthDate: BirthDateYearsAgo(now, 20),
	}
}

// Customer returns a persisted record with the given id and CPF.
func Customer(customerID, cpf string) models.Customer {
	return models.Customer{
		ID:        id.CustomerID(customerID),
		Name:      "Maria Oliveira",
		Email:     "maria@example.com",
		CPF:       cpf,
		Phone:     "(21) 3456-7890",
		BirthDate: "1985-07-14",
	}
}
