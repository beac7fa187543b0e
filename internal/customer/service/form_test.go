package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/internal/postcode"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	fixtures "github.com/pk-mender/desafiojr/pkg/testutil"
)

// fakePostcode answers from a fixed table and counts calls.
type fakePostcode struct {
	mu        sync.Mutex
	addresses map[string]postcode.Address
	err       error
	calls     int
}

func (f *fakePostcode) Lookup(_ context.Context, cep string) (postcode.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return postcode.Address{}, f.err
	}
	digits, err := postcode.Normalize(cep)
	if err != nil {
		return postcode.Address{}, err
	}
	a, ok := f.addresses[digits]
	if !ok {
		return postcode.Address{}, postcode.ErrNotFound
	}
	return a, nil
}

func (s *ServiceSuite) TestOpen() {
	s.Run("create mode starts pristine", func() {
		fs, err := s.form.Open(s.ctx, "")
		s.Require().NoError(err)
		s.False(fs.IsEdit())
		s.Equal(models.StatePristine, fs.State)
		s.Equal(models.LabelSave, fs.ActionLabel())
		s.Equal(models.FieldName, fs.Focus)
		s.Equal(s.now, fs.CreatedAt)
	})

	s.Run("edit mode populates from the record", func() {
		stored := fixtures.Customer("42", fixtures.ValidCPF2)
		s.gw.EXPECT().Get(gomock.Any(), id.CustomerID("42")).Return(stored, nil)

		fs, err := s.form.Open(s.ctx, "42")
		s.Require().NoError(err)
		s.True(fs.IsEdit())
		s.Equal(models.StatePopulated, fs.State)
		s.Equal("14/07/1985", fs.Form.BirthDate)
		s.Equal(models.LabelUpdate, fs.ActionLabel())
		s.Equal(models.HeadingEdit, fs.Heading())
	})

	s.Run("edit mode fails loudly when the id does not resolve", func() {
		s.gw.EXPECT().Get(gomock.Any(), id.CustomerID("404")).
			Return(models.Customer{}, &gateway.GatewayError{Category: gateway.ErrorNotFound, Op: gateway.OpGet})

		_, err := s.form.Open(s.ctx, "404")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(models.MsgNotFound, err.Error())
	})

	s.Run("edit mode transport failure", func() {
		s.gw.EXPECT().Get(gomock.Any(), id.CustomerID("43")).
			Return(models.Customer{}, &gateway.GatewayError{Category: gateway.ErrorOutage, Op: gateway.OpGet})

		_, err := s.form.Open(s.ctx, "43")
		s.Equal(models.MsgLoadFailed, err.Error())
	})
}

func (s *ServiceSuite) TestGetExpiredSession() {
	_, err := s.form.Get(s.ctx, id.NewSessionID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal(models.MsgFormExpired, err.Error())
}

func (s *ServiceSuite) TestInputAppliesMasks() {
	fs, err := s.form.Open(s.ctx, "")
	s.Require().NoError(err)

	cases := []struct{ field, typed, want string }{
		{models.FieldCPF, "52998224725", "529.982.247-25"},
		{models.FieldPhone, "11987654321", "(11) 98765-4321"},
		{models.FieldBirthDate, "20051990", "20/05/1990"},
		{models.FieldName, "Ana 3rd", "Ana rd"},
		{models.FieldEmail, "a@b.com", "a@b.com"},
	}
	for _, tc := range cases {
		got, notice, err := s.form.Input(s.ctx, fs.ID, tc.field, tc.typed)
		s.Require().NoError(err)
		s.Nil(notice)
		value, _ := got.Form.Get(tc.field)
		s.Equal(tc.want, value, tc.field)
	}

	got, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.Equal(models.StatePopulated, got.State)
	s.True(got.WarnOnLeave())
}

func (s *ServiceSuite) TestInputRejectsUnknownField() {
	fs, err := s.form.Open(s.ctx, "")
	s.Require().NoError(err)

	_, _, err = s.form.Input(s.ctx, fs.ID, "admin", "true")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestInputRefusedWhileSaving() {
	fs := s.openWith("", fixtures.ValidForm(s.now))
	fs.Busy = true
	fs.State = models.StateSubmitting
	s.Require().NoError(s.sessions.Save(s.ctx, fs))

	_, _, err := s.form.Input(s.ctx, fs.ID, models.FieldName, "Outro Nome")
	s.True(dErrors.HasCode(err, dErrors.CodeBusy))

	got, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.Equal(fixtures.ValidForm(s.now).Name, got.Form.Name)
	s.Equal(models.StateSubmitting, got.State)
}

func (s *ServiceSuite) TestInputPostcodeBackfill() {
	s.postcode.addresses = map[string]postcode.Address{
		"01310100": {PostalCode: "01310-100", Street: "Avenida Paulista", District: "Bela Vista", City: "São Paulo", State: "SP"},
	}

	s.Run("partial code does not look up", func() {
		fs, err := s.form.Open(s.ctx, "")
		s.Require().NoError(err)
		_, notice, err := s.form.Input(s.ctx, fs.ID, models.FieldPostalCode, "0131")
		s.Require().NoError(err)
		s.Nil(notice)
		s.Equal(0, s.postcode.calls)
	})

	s.Run("complete code fills the address and moves focus", func() {
		fs, err := s.form.Open(s.ctx, "")
		s.Require().NoError(err)
		got, notice, err := s.form.Input(s.ctx, fs.ID, models.FieldPostalCode, "01310100")
		s.Require().NoError(err)
		s.Nil(notice)
		s.Equal("01310-100", got.Form.PostalCode)
		s.Equal("Avenida Paulista", got.Form.Street)
		s.Equal("Bela Vista", got.Form.District)
		s.Equal("São Paulo", got.Form.City)
		s.Equal("SP", got.Form.State)
		s.Equal(models.FieldNumber, got.Focus)
		s.Len(s.recorder.Named(tracer.SpanFormPostcode), 1)
	})

	s.Run("unknown code returns an info notice", func() {
		fs, err := s.form.Open(s.ctx, "")
		s.Require().NoError(err)
		got, notice, err := s.form.Input(s.ctx, fs.ID, models.FieldPostalCode, "99999-999")
		s.Require().NoError(err)
		s.Require().NotNil(notice)
		s.Equal(models.NoticeInfo, notice.Level)
		s.Equal(models.MsgPostcodeMiss, notice.Message)
		s.Empty(got.Form.Street)
		s.Equal(models.FieldPostalCode, got.Focus)
	})
}

func (s *ServiceSuite) TestLeaveGuard() {
	fs, err := s.form.Open(s.ctx, "")
	s.Require().NoError(err)

	check, err := s.form.Leave(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.False(check.Warn)

	_, _, err = s.form.Input(s.ctx, fs.ID, models.FieldName, "Ana")
	s.Require().NoError(err)
	check, err = s.form.Leave(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.True(check.Warn)
	s.Equal(models.MsgUnsaved, check.Message)
}

func (s *ServiceSuite) TestCloseAndSweep() {
	fs, err := s.form.Open(s.ctx, "")
	s.Require().NoError(err)
	s.Require().NoError(s.form.Close(s.ctx, fs.ID))
	s.Require().NoError(s.form.Close(s.ctx, fs.ID))

	_, err = s.form.Open(s.ctx, "")
	s.Require().NoError(err)
	n, err := s.form.SweepExpired(s.ctx, s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(0, s.sessions.Count())
}
