package validation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/platform/middleware/requesttime"
	s "github.com/pk-mender/desafiojr/pkg/string"
)

var defaultValidator = newValidator()

// Custom tags registered on the shared validator.
//
//	notblank     non-whitespace content
//	personname   letters (accented included), spaces, hyphens, apostrophes
//	emailshape   local@domain.tld, no whitespace
//	cpf          11 digits with valid check digits, formatting ignored
//	displaydate  DD/MM/YYYY naming a real calendar day
//	adult=N      DD/MM/YYYY at least N years before the request time
//	phone        10 or 11 digits, formatting ignored
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return domain.IsValidName(fl.Field().String())
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return domain.IsEmailShaped(fl.Field().String())
	})
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return domain.IsValidCPF(fl.Field().String())
	})
	_ = v.RegisterValidation("displaydate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDisplayDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return domain.IsValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidationCtx("adult", isAdult)
	return v
}

func isAdult(ctx context.Context, fl validator.FieldLevel) bool {
	minAge := domain.AdultAge
	if p := fl.Param(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		minAge = n
	}
	birth, err := domain.ParseDisplayDate(fl.Field().String())
	if err != nil {
		return false
	}
	return domain.IsAtLeast(birth, requesttime.Now(ctx), minAge)
}

// Validate validates a struct using the default validator and returns a domain error
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return fieldError(err, ErrorMessage(err))
	}
	return nil
}

// Var checks a single value against a tag list. The context carries the
// request time used by the adult rule. It returns the raw validator error
// so callers can choose their own wording; use Tag to see what failed.
func Var(ctx context.Context, value any, tags string) error {
	return defaultValidator.VarCtx(ctx, value, tags)
}

// Tag returns the failing tag of a validator error ("" when err is not one).
func Tag(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return ""
	}
	return validationErrs[0].Tag()
}

func fieldError(err error, msg string) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return dErrors.NewField(fieldName(validationErrs[0]), msg)
	}
	return dErrors.New(dErrors.CodeValidation, msg)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	return s.ToSnakeCase(name)
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	field := fieldName(fe)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "cpf":
		return fmt.Sprintf("%s must be a valid CPF", field)
	case "displaydate":
		return fmt.Sprintf("%s must be a DD/MM/YYYY date", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}

// MaxLen reports whether value fits in n runes.
func MaxLen(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}
