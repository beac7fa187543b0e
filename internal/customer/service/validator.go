package service

import (
	"context"
	"fmt"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	pvalidation "github.com/pk-mender/desafiojr/pkg/platform/validation"
	"github.com/pk-mender/desafiojr/pkg/validation"
)

// Field messages.
const (
	MsgNameRequired  = "Informe o nome do cliente."
	MsgNameInvalid   = "O nome deve conter apenas letras."
	MsgEmailRequired = "Informe o e-mail do cliente."
	MsgEmailInvalid  = "E-mail inválido."
	MsgCPFRequired   = "Informe o CPF do cliente."
	MsgCPFInvalid    = "CPF inválido."
	MsgBirthRequired = "Informe a data de nascimento."
	MsgBirthInvalid  = "Data de nascimento inválida."
	MsgUnderage      = "O cliente deve ter pelo menos %d anos."
	MsgPhoneInvalid  = "Telefone inválido."
	MsgTooLong       = "Valor muito longo."
)

type fieldRule struct {
	field    string
	value    func(models.Form) string
	tags     string
	maxLen   int
	messages map[string]string // failing tag -> message
}

// FormValidator checks a form in a fixed field order and stops at the first
// failure, so each attempt surfaces exactly one message.
type FormValidator struct {
	rules  []fieldRule
	minAge int
}

// NewFormValidator builds the rule chain. requireEmail turns the email shape
// check into a required field; minAge defaults to 18.
func NewFormValidator(requireEmail bool, minAge int) *FormValidator {
	if minAge < 1 {
		minAge = 18
	}
	emailTags := "omitempty,emailshape"
	if requireEmail {
		emailTags = "required,emailshape"
	}
	underage := fmt.Sprintf(MsgUnderage, minAge)

	return &FormValidator{
		minAge: minAge,
		rules: []fieldRule{
			{
				field:    models.FieldName,
				value:    func(f models.Form) string { return f.Name },
				tags:     "notblank,personname",
				maxLen:   pvalidation.MaxNameLength,
				messages: map[string]string{"notblank": MsgNameRequired, "personname": MsgNameInvalid},
			},
			{
				field:    models.FieldEmail,
				value:    func(f models.Form) string { return f.Email },
				tags:     emailTags,
				maxLen:   pvalidation.MaxEmailLength,
				messages: map[string]string{"required": MsgEmailRequired, "emailshape": MsgEmailInvalid},
			},
			{
				field:    models.FieldCPF,
				value:    func(f models.Form) string { return f.CPF },
				tags:     "required,cpf",
				maxLen:   pvalidation.MaxFieldValueLength,
				messages: map[string]string{"required": MsgCPFRequired, "cpf": MsgCPFInvalid},
			},
			{
				field:  models.FieldBirthDate,
				value:  func(f models.Form) string { return f.BirthDate },
				tags:   fmt.Sprintf("required,displaydate,adult=%d", minAge),
				maxLen: pvalidation.MaxFieldValueLength,
				messages: map[string]string{
					"required":    MsgBirthRequired,
					"displaydate": MsgBirthInvalid,
					"adult":       underage,
				},
			},
			{
				field:    models.FieldPhone,
				value:    func(f models.Form) string { return f.Phone },
				tags:     "omitempty,phone",
				maxLen:   pvalidation.MaxFieldValueLength,
				messages: map[string]string{"phone": MsgPhoneInvalid},
			},
			addressRule(models.FieldPostalCode, func(f models.Form) string { return f.PostalCode }),
			addressRule(models.FieldStreet, func(f models.Form) string { return f.Street }),
			addressRule(models.FieldNumber, func(f models.Form) string { return f.Number }),
			addressRule(models.FieldDistrict, func(f models.Form) string { return f.District }),
			addressRule(models.FieldCity, func(f models.Form) string { return f.City }),
			addressRule(models.FieldState, func(f models.Form) string { return f.State }),
		},
	}
}

func addressRule(field string, value func(models.Form) string) fieldRule {
	return fieldRule{field: field, value: value, maxLen: pvalidation.MaxAddressPartLength}
}

// MinAge is the configured minimum age.
func (v *FormValidator) MinAge() int {
	return v.minAge
}

// Validate returns nil or a validation_failed error naming one field. The
// adult rule measures age at the request time carried by ctx.
func (v *FormValidator) Validate(ctx context.Context, f models.Form) error {
	for _, r := range v.rules {
		value := r.value(f)
		if !validation.MaxLen(value, r.maxLen) {
			return dErrors.NewField(r.field, MsgTooLong)
		}
		if r.tags == "" {
			continue
		}
		if err := validation.Var(ctx, value, r.tags); err != nil {
			msg, ok := r.messages[validation.Tag(err)]
			if !ok {
				msg = models.MsgInvalidFields
			}
			return dErrors.NewField(r.field, msg)
		}
	}
	return nil
}
