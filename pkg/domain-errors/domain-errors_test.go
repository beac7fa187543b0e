package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Every controller operation converts failures into these errors before the
// view layer turns them into notices, so code matching must survive wrapping.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "cliente não encontrado"}
		s.Equal("cliente não encontrado", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNotFound}
		s.Equal("not_found", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeUnavailable, Message: "gateway error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeDuplicate, Message: "cpf taken"}
		err2 := &Error{Code: CodeDuplicate, Message: "other"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := &Error{Code: CodeInternal}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err1 := &Error{Code: CodeNotFound}
		s.False(err1.Is(errors.New("not found")))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeNotFound, Message: "original"}
		wrapped := fmt.Errorf("load form: %w", inner)
		s.True(errors.Is(wrapped, &Error{Code: CodeNotFound}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code and field", func() {
		original := NewField("cpf", "CPF inválido.")
		wrapped := Wrap(original, CodeInternal, "submit failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeValidation, domainErr.Code)
		s.Equal("cpf", domainErr.Field)
		s.Equal("submit failed", domainErr.Message)
	})

	s.Run("uses provided code when wrapping non-domain error", func() {
		wrapped := Wrap(errors.New("eof"), CodeUnavailable, "gateway error")
		s.True(HasCode(wrapped, CodeUnavailable))
	})

	s.Run("wrapped error is accessible via Unwrap", func() {
		original := errors.New("root cause")
		s.True(errors.Is(Wrap(original, CodeInternal, "x"), original))
	})
}

func (s *DomainErrorsSuite) TestHelpers() {
	s.Run("HasCode returns false for nil error", func() {
		s.False(HasCode(nil, CodeNotFound))
	})

	s.Run("CodeOf defaults to internal", func() {
		s.Equal(CodeInternal, CodeOf(errors.New("boom")))
		s.Equal(CodeBusy, CodeOf(New(CodeBusy, "busy")))
	})

	s.Run("FieldOf reads validation field", func() {
		s.Equal("birth_date", FieldOf(NewField("birth_date", "required")))
		s.Empty(FieldOf(New(CodeDuplicate, "dup")))
		s.Empty(FieldOf(errors.New("plain")))
	})
}
