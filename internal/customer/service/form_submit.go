package service

import (
	"context"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	"github.com/pk-mender/desafiojr/internal/customer/metrics"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/internal/platform/privacy"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/platform/audit"
)

// Submit validates the session's form, checks the CPF against existing
// records and then creates or updates the record.
//
// Steps run strictly in order and stop at the first failure:
//  1. validation (one field error per attempt)
//  2. duplicate check: any record with the same CPF digits, other than the
//     one being edited, rejects the submit with CodeDuplicate and no write is
//     sent
//  3. the write, with the CPF as NNN.NNN.NNN-NN and the birth date in
//     canonical form
//
// While a submit runs the session is busy and a second Submit fails with
// CodeBusy. The busy flag is cleared whatever the outcome.
func (s *FormService) Submit(ctx context.Context, sessionID id.SessionID) (result models.SubmitResult, err error) {
	mode := modeCreate
	fs, err := s.update(ctx, sessionID, func(fs *models.FormSession) error {
		mode = modeOf(fs)
		if fs.Busy {
			return dErrors.New(dErrors.CodeBusy, models.MsgSaving)
		}
		fs.Form = fs.Form.Trimmed()
		fs.Busy = true
		fs.State = models.StateValidating
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBusy) {
			s.recordSubmission(mode, metrics.OutcomeBusy)
		}
		return result, err
	}
	defer func() { s.release(ctx, sessionID, err) }()

	ctx, span := s.tracer.Start(ctx, tracer.SpanFormSubmit,
		tracer.String(tracer.AttrMode, mode),
		tracer.String(tracer.AttrCPFHash, tracer.HashCPF(fs.Form.CPF)),
	)
	defer func() { span.End(err) }()

	if err = s.checker.Validate(ctx, fs.Form); err != nil {
		s.recordSubmission(mode, metrics.OutcomeInvalid)
		return result, err
	}
	cpf, err := id.ParseCPF(fs.Form.CPF)
	if err != nil {
		s.recordSubmission(mode, metrics.OutcomeInvalid)
		return result, dErrors.NewField(models.FieldCPF, MsgCPFInvalid)
	}
	// one spelling for the duplicate check and the write
	fs.Form.CPF = cpf.Formatted()

	if _, err = s.update(ctx, sessionID, func(cur *models.FormSession) error {
		cur.State = models.StateSubmitting
		cur.Form.CPF = fs.Form.CPF
		return nil
	}); err != nil {
		return result, err
	}

	if err = s.checkDuplicate(ctx, span, fs); err != nil {
		return result, err
	}

	record, err := fs.Form.ToCustomer(fs.CustomerID)
	if err != nil {
		s.recordSubmission(mode, metrics.OutcomeInvalid)
		return result, dErrors.NewField(models.FieldBirthDate, MsgBirthInvalid)
	}

	saved, err := s.write(ctx, record)
	if err != nil {
		s.recordSubmission(mode, metrics.OutcomeError)
		s.logger.WarnContext(ctx, "customer write failed",
			"mode", mode,
			"customer_id", fs.CustomerID.String(),
			"error", err,
		)
		return result, gateway.ToDomainError(err, models.MsgSaveFailed)
	}

	span.SetAttributes(tracer.String(tracer.AttrCustomerID, saved.ID.String()))
	s.recordSubmission(mode, metrics.OutcomeSuccess)
	action := audit.EventCustomerUpdated
	if record.IsNew() {
		action = audit.EventCustomerCreated
	}
	s.logAudit(ctx, action, saved.ID.String(), saved.CPF)
	span.AddEvent(tracer.EventAuditEmitted)

	return models.SubmitResult{
		Customer:      saved,
		Created:       record.IsNew(),
		AskForAnother: record.IsNew(),
	}, nil
}

// checkDuplicate must finish before any write is issued.
func (s *FormService) checkDuplicate(ctx context.Context, span tracer.Span, fs *models.FormSession) error {
	mode := modeOf(fs)
	matches, err := s.gateway.FindByCPF(ctx, fs.Form.CPF)
	if err != nil {
		s.recordSubmission(mode, metrics.OutcomeError)
		s.logger.WarnContext(ctx, "duplicate check failed",
			"cpf_hash", tracer.HashCPF(fs.Form.CPF),
			"error", err,
		)
		return gateway.ToDomainError(err, models.MsgSaveFailed)
	}
	for _, m := range matches {
		if fs.IsEdit() && m.ID == fs.CustomerID {
			continue
		}
		span.AddEvent(tracer.EventDuplicateFound,
			tracer.String(tracer.AttrCustomerID, m.ID.String()),
		)
		s.recordSubmission(mode, metrics.OutcomeDuplicate)
		s.logger.InfoContext(ctx, "duplicate cpf rejected",
			"cpf", privacy.MaskCPF(fs.Form.CPF),
			"existing_id", m.ID.String(),
			"mode", mode,
		)
		s.logAudit(ctx, audit.EventDuplicateRejected, m.ID.String(), fs.Form.CPF)
		return &dErrors.Error{
			Code:    dErrors.CodeDuplicate,
			Field:   models.FieldCPF,
			Message: models.MsgDuplicateCPF,
		}
	}
	return nil
}

func (s *FormService) write(ctx context.Context, c models.Customer) (models.Customer, error) {
	if c.IsNew() {
		return s.gateway.Create(ctx, c)
	}
	return s.gateway.Update(ctx, c)
}

// release clears the busy flag and records how the submit ended. The session
// may have been closed or expired meanwhile; that is not an error here.
func (s *FormService) release(ctx context.Context, sessionID id.SessionID, submitErr error) {
	_, err := s.update(ctx, sessionID, func(fs *models.FormSession) error {
		fs.Busy = false
		if submitErr != nil {
			fs.State = models.StateRejected
			return nil
		}
		fs.State = models.StateSubmitted
		fs.Saved = true
		return nil
	})
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		s.logger.ErrorContext(ctx, "failed to release form session",
			"session_id", sessionID.String(),
			"error", err,
		)
	}
}

func modeOf(fs *models.FormSession) string {
	if fs.IsEdit() {
		return modeEdit
	}
	return modeCreate
}
