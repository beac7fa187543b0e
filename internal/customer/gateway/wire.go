package gateway

import (
	"github.com/pk-mender/desafiojr/internal/customer/models"
	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// customerWire is the record as the customer API stores it.
type customerWire struct {
	ID             id.CustomerID `json:"id,omitempty"`
	Nome           string        `json:"nome"`
	Email          string        `json:"email"`
	CPF            string        `json:"cpf"`
	Telefone       string        `json:"telefone"`
	DataNascimento string        `json:"dataNascimento"`
	CEP            string        `json:"cep,omitempty"`
	Logradouro     string        `json:"logradouro,omitempty"`
	Numero         string        `json:"numero,omitempty"`
	Bairro         string        `json:"bairro,omitempty"`
	Cidade         string        `json:"cidade,omitempty"`
	Estado         string        `json:"estado,omitempty"`
}

func toWire(c models.Customer) customerWire {
	return customerWire{
		Nome:           c.Name,
		Email:          c.Email,
		CPF:            c.CPF,
		Telefone:       c.Phone,
		DataNascimento: c.BirthDate,
		CEP:            c.Address.PostalCode,
		Logradouro:     c.Address.Street,
		Numero:         c.Address.Number,
		Bairro:         c.Address.District,
		Cidade:         c.Address.City,
		Estado:         c.Address.State,
	}
}

func (w customerWire) toModel() models.Customer {
	return models.Customer{
		ID:        w.ID,
		Name:      w.Nome,
		Email:     w.Email,
		CPF:       w.CPF,
		Phone:     w.Telefone,
		BirthDate: w.DataNascimento,
		Address: models.Address{
			PostalCode: w.CEP,
			Street:     w.Logradouro,
			Number:     w.Numero,
			District:   w.Bairro,
			City:       w.Cidade,
			State:      w.Estado,
		},
	}
}

func toModels(ws []customerWire) []models.Customer {
	out := make([]models.Customer, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out
}
