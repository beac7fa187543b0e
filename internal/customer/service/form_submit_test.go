package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/platform/audit"
	fixtures "github.com/pk-mender/desafiojr/pkg/testutil"
)

// openWith opens a session and stores form in it as if typed.
func (s *ServiceSuite) openWith(customerID id.CustomerID, form models.Form) *models.FormSession {
	fs := models.NewFormSession(id.NewSessionID(), customerID, form, s.now)
	s.Require().NoError(s.sessions.Save(s.ctx, fs))
	return fs
}

func (s *ServiceSuite) TestSubmitCreate() {
	form := models.Form{
		Name:      "João",
		Email:     "a@b.com",
		CPF:       fixtures.ValidCPF1,
		Phone:     "(11) 98765-4321",
		BirthDate: fixtures.BirthDateYearsAgo(s.now, 20),
	}
	fs := s.openWith("", form)

	var sent models.Customer
	gomock.InOrder(
		s.gw.EXPECT().FindByCPF(gomock.Any(), fixtures.ValidCPF1).Return(nil, nil),
		s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c models.Customer) (models.Customer, error) {
				sent = c
				c.ID = "101"
				return c, nil
			}),
	)

	res, err := s.form.Submit(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.True(res.Created)
	s.True(res.AskForAnother)
	s.Equal(id.CustomerID("101"), res.Customer.ID)
	s.True(sent.IsNew())
	s.Equal(s.now.AddDate(-20, 0, 0).Format("2006-01-02"), sent.BirthDate)

	after, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.True(after.Saved)
	s.False(after.Busy)
	s.Equal(models.StateSubmitted, after.State)
	s.False(after.WarnOnLeave())

	s.Equal([]string{string(audit.EventCustomerCreated)}, s.auditActions())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SubmissionsTotal.WithLabelValues("create", "success")))

	s.Run("another clears the form for the next entry", func() {
		out, err := s.form.AfterSave(s.ctx, fs.ID, true)
		s.Require().NoError(err)
		s.False(out.Navigate)
		s.Require().NotNil(out.Session)
		s.Equal(models.Form{}, out.Session.Form)
		s.False(out.Session.Saved)
		s.Equal(models.StatePristine, out.Session.State)
	})
}

func (s *ServiceSuite) TestAfterSaveNavigates() {
	s.Run("create mode declining another closes the session", func() {
		fs := s.openWith("", fixtures.ValidForm(s.now))
		fs.Saved = true
		s.Require().NoError(s.sessions.Save(s.ctx, fs))

		out, err := s.form.AfterSave(s.ctx, fs.ID, false)
		s.Require().NoError(err)
		s.True(out.Navigate)
		s.Nil(out.Session)
		_, err = s.form.Get(s.ctx, fs.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("edit mode always navigates", func() {
		fs := s.openWith("5", fixtures.ValidForm(s.now))
		fs.Saved = true
		s.Require().NoError(s.sessions.Save(s.ctx, fs))

		out, err := s.form.AfterSave(s.ctx, fs.ID, true)
		s.Require().NoError(err)
		s.True(out.Navigate)
	})

	s.Run("nothing saved yet", func() {
		fs := s.openWith("", fixtures.ValidForm(s.now))
		_, err := s.form.AfterSave(s.ctx, fs.ID, true)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestSubmitValidationFailureSendsNothing() {
	form := fixtures.ValidForm(s.now)
	form.BirthDate = fixtures.BirthDateYearsAgo(s.now.AddDate(0, 0, 1), 18)
	fs := s.openWith("", form)

	_, err := s.form.Submit(s.ctx, fs.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(models.FieldBirthDate, dErrors.FieldOf(err))

	after, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.False(after.Busy)
	s.False(after.Saved)
	s.Equal(models.StateRejected, after.State)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SubmissionsTotal.WithLabelValues("create", "invalid")))
}

func (s *ServiceSuite) TestSubmitTrimsValues() {
	form := fixtures.ValidForm(s.now)
	form.Name = "  João Silva  "
	fs := s.openWith("", form)

	s.gw.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Customer) (models.Customer, error) {
			s.Equal("João Silva", c.Name)
			c.ID = "1"
			return c, nil
		})

	_, err := s.form.Submit(s.ctx, fs.ID)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestSubmitDuplicateCPF() {
	s.Run("create with a CPF already on file is rejected without a write", func() {
		fs := s.openWith("", fixtures.ValidForm(s.now))
		s.gw.EXPECT().FindByCPF(gomock.Any(), fixtures.ValidCPF1).
			Return([]models.Customer{fixtures.Customer("1", fixtures.ValidCPF1)}, nil)
		s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.form.Submit(s.ctx, fs.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
		s.Equal(models.FieldCPF, dErrors.FieldOf(err))
		s.Equal(models.MsgDuplicateCPF, err.Error())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.DuplicateRejections))
		s.Contains(s.auditActions(), string(audit.EventDuplicateRejected))

		span := s.recorder.Named(tracer.SpanFormSubmit)[0]
		s.Contains(span.Events, tracer.EventDuplicateFound)
	})

	s.Run("edit keeping its own CPF is accepted", func() {
		fs := s.openWith("1", fixtures.ValidForm(s.now))
		s.gw.EXPECT().FindByCPF(gomock.Any(), fixtures.ValidCPF1).
			Return([]models.Customer{fixtures.Customer("1", fixtures.ValidCPF1)}, nil)
		s.gw.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c models.Customer) (models.Customer, error) {
				s.Equal(id.CustomerID("1"), c.ID)
				return c, nil
			})

		res, err := s.form.Submit(s.ctx, fs.ID)
		s.Require().NoError(err)
		s.False(res.Created)
		s.False(res.AskForAnother)
		s.Contains(s.auditActions(), string(audit.EventCustomerUpdated))
	})

	s.Run("edit taking another record's CPF is rejected", func() {
		fs := s.openWith("1", fixtures.ValidForm(s.now))
		s.gw.EXPECT().FindByCPF(gomock.Any(), fixtures.ValidCPF1).
			Return([]models.Customer{fixtures.Customer("2", fixtures.ValidCPF1)}, nil)
		s.gw.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.form.Submit(s.ctx, fs.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
	})
}

func (s *ServiceSuite) TestSubmitCreateThenSameCPFAgain() {
	// a stand-in for the customer API: records created so far, by CPF
	byCPF := map[string][]models.Customer{}
	s.gw.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, cpf string) ([]models.Customer, error) {
			return byCPF[cpf], nil
		})
	s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(_ context.Context, c models.Customer) (models.Customer, error) {
			c.ID = "1"
			byCPF[c.CPF] = append(byCPF[c.CPF], c)
			return c, nil
		})

	first := s.openWith("", fixtures.ValidForm(s.now))
	_, err := s.form.Submit(s.ctx, first.ID)
	s.Require().NoError(err)

	second := s.openWith("", fixtures.ValidForm(s.now))
	_, err = s.form.Submit(s.ctx, second.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func (s *ServiceSuite) TestSubmitWriteFailureReleasesSession() {
	fs := s.openWith("", fixtures.ValidForm(s.now))
	s.gw.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(models.Customer{}, &gateway.GatewayError{Category: gateway.ErrorTimeout, Op: gateway.OpCreate})

	_, err := s.form.Submit(s.ctx, fs.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.Equal(models.MsgSaveFailed, err.Error())

	after, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.False(after.Busy)
	s.False(after.Saved)
	s.True(after.WarnOnLeave())
	s.Empty(s.auditActions())
}

func (s *ServiceSuite) TestSubmitDuplicateCheckFailureBlocksWrite() {
	fs := s.openWith("", fixtures.ValidForm(s.now))
	s.gw.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).
		Return(nil, &gateway.GatewayError{Category: gateway.ErrorOutage, Op: gateway.OpFindByCPF})
	s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.form.Submit(s.ctx, fs.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestSubmitRejectsConcurrentClicks() {
	fs := s.openWith("", fixtures.ValidForm(s.now))

	const clicks = 5
	release := make(chan struct{})
	var busy atomic.Int32
	s.gw.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(context.Context, string) ([]models.Customer, error) {
			<-release
			return nil, nil
		})
	s.gw.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(_ context.Context, c models.Customer) (models.Customer, error) {
			c.ID = "1"
			return c, nil
		})

	result := fixtures.RunConcurrent(clicks, func(int) error {
		_, err := s.form.Submit(s.ctx, fs.ID)
		if dErrors.HasCode(err, dErrors.CodeBusy) && busy.Add(1) == clicks-1 {
			close(release)
		}
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(clicks-1), result.Busy)
	s.Equal(float64(clicks-1), testutil.ToFloat64(s.metrics.SubmissionsTotal.WithLabelValues("create", "busy")))

	after, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.False(after.Busy)
}

// exactCPFAPI stands in for a customer API whose cpf filter compares text.
func exactCPFAPI(records []map[string]string, posts *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			posts.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"99"}`))
			return
		}
		matched := []map[string]string{}
		for _, rec := range records {
			if rec["cpf"] == r.URL.Query().Get("cpf") {
				matched = append(matched, rec)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(matched)
	}))
}

func (s *ServiceSuite) TestSubmitDuplicateCPFAcrossSpellings() {
	cases := []struct {
		name   string
		stored string
		typed  string
	}{
		{"stored bare, typed formatted", "52998224725", fixtures.ValidCPF1},
		{"stored formatted, typed bare", fixtures.ValidCPF1, "52998224725"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			var writes atomic.Int32
			api := exactCPFAPI([]map[string]string{{"id": "1", "cpf": tc.stored}}, &writes)
			defer api.Close()

			svc := NewFormService(gateway.NewHTTPClient(api.URL), s.sessions, NewFormValidator(false, 18), nil)
			form := fixtures.ValidForm(s.now)
			form.CPF = tc.typed
			fs := s.openWith("", form)

			_, err := svc.Submit(s.ctx, fs.ID)
			s.True(dErrors.HasCode(err, dErrors.CodeDuplicate), "got %v", err)
			s.Zero(writes.Load())
		})
	}
}

func (s *ServiceSuite) TestSubmitWritesFormattedCPF() {
	form := fixtures.ValidForm(s.now)
	form.CPF = "52998224725"
	fs := s.openWith("7", form)

	var sent models.Customer
	gomock.InOrder(
		s.gw.EXPECT().FindByCPF(gomock.Any(), fixtures.ValidCPF1).
			Return([]models.Customer{fixtures.Customer("7", "52998224725")}, nil),
		s.gw.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c models.Customer) (models.Customer, error) {
				sent = c
				return c, nil
			}),
	)

	_, err := s.form.Submit(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.Equal(fixtures.ValidCPF1, sent.CPF)

	after, err := s.form.Get(s.ctx, fs.ID)
	s.Require().NoError(err)
	s.Equal(fixtures.ValidCPF1, after.Form.CPF)
}
