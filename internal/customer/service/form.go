package service

import (
	"context"
	"errors"
	"time"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	"github.com/pk-mender/desafiojr/internal/customer/mask"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/store/session"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/platform/middleware/requesttime"
	psync "github.com/pk-mender/desafiojr/pkg/platform/sync"
	pvalidation "github.com/pk-mender/desafiojr/pkg/platform/validation"
	"github.com/pk-mender/desafiojr/pkg/validation"
)

const msgUnknownField = "Campo desconhecido."

// FormService runs the create/edit form flow over sessions kept in a
// SessionStore. Changes to one session are serialized by a keyed lock; the
// lock is never held across a call to the customer API or the postcode
// lookup.
type FormService struct {
	gateway  Gateway
	sessions SessionStore
	checker  FormChecker
	postcode PostcodeLookup
	locks    *psync.ShardedMutex
	observers
}

// AfterSaveResult tells the caller where to go once the post-save choice
// is made. Session is nil when Navigate is set.
type AfterSaveResult struct {
	Navigate bool
	Session  *models.FormSession
}

// LeaveCheck is the unsaved-changes guard answer.
type LeaveCheck struct {
	Warn    bool
	Message string
}

// NewFormService wires the form flow. postcode may be nil, which disables
// address back-fill.
func NewFormService(gw Gateway, sessions SessionStore, checker FormChecker, postcode PostcodeLookup, opts ...Option) *FormService {
	return &FormService{
		gateway:   gw,
		sessions:  sessions,
		checker:   checker,
		postcode:  postcode,
		locks:     psync.NewShardedMutex(),
		observers: newObservers(opts),
	}
}

// Open starts a form session. A nil customerID opens an empty create form;
// otherwise the record is fetched and the form populated for editing.
func (s *FormService) Open(ctx context.Context, customerID id.CustomerID) (*models.FormSession, error) {
	form := models.Form{}
	if !customerID.IsNil() {
		c, err := s.load(ctx, customerID)
		if err != nil {
			return nil, err
		}
		form = models.FormFromCustomer(c)
	}

	fs := models.NewFormSession(id.NewSessionID(), customerID, form, requesttime.Now(ctx))
	fs.Focus = models.FieldName
	if err := s.sessions.Save(ctx, fs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	s.setOpenSessions(s.sessions.Count())
	return fs, nil
}

func (s *FormService) load(ctx context.Context, customerID id.CustomerID) (c models.Customer, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanFormOpen,
		tracer.String(tracer.AttrCustomerID, customerID.String()),
		tracer.String(tracer.AttrMode, modeEdit),
	)
	defer func() { span.End(err) }()

	c, err = s.gateway.Get(ctx, customerID)
	if err != nil {
		msg := models.MsgLoadFailed
		if gateway.IsNotFound(err) {
			msg = models.MsgNotFound
		}
		s.logger.WarnContext(ctx, "customer load for edit failed",
			"customer_id", customerID.String(),
			"error", err,
		)
		return c, gateway.ToDomainError(err, msg)
	}
	return c, nil
}

// Get returns the current state of a session.
func (s *FormService) Get(ctx context.Context, sessionID id.SessionID) (*models.FormSession, error) {
	return s.find(ctx, sessionID)
}

// Input applies the field's mask to a keystroke value and stores it. When
// the value completes a postal code, the address is looked up and back-filled
// and focus moves to the number field. A failed lookup returns an info
// notice and leaves the form usable. Input is refused with CodeBusy while a
// submit is in flight.
func (s *FormService) Input(ctx context.Context, sessionID id.SessionID, field, value string) (*models.FormSession, *models.Notice, error) {
	if !models.IsField(field) {
		return nil, nil, &dErrors.Error{Code: dErrors.CodeBadRequest, Field: field, Message: msgUnknownField}
	}
	if !validation.MaxLen(value, pvalidation.MaxFieldValueLength) {
		return nil, nil, dErrors.NewField(field, MsgTooLong)
	}
	masked := mask.Apply(field, value)

	fs, err := s.update(ctx, sessionID, func(fs *models.FormSession) error {
		// the write in flight would mark these edits as saved
		if fs.Busy {
			return dErrors.New(dErrors.CodeBusy, models.MsgSaving)
		}
		if prev, _ := fs.Form.Get(field); prev != masked {
			fs.Form, _ = fs.Form.With(field, masked)
			fs.Saved = false
			fs.State = models.StatePopulated
		}
		fs.Focus = field
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if field != models.FieldPostalCode || !mask.PostalCodeComplete(masked) || s.postcode == nil {
		return fs, nil, nil
	}
	return s.fillAddress(ctx, fs, masked)
}

func (s *FormService) fillAddress(ctx context.Context, fs *models.FormSession, cep string) (*models.FormSession, *models.Notice, error) {
	spanCtx, span := s.tracer.Start(ctx, tracer.SpanFormPostcode)
	address, err := s.postcode.Lookup(spanCtx, cep)
	span.End(err)
	if err != nil {
		s.logger.InfoContext(ctx, "postcode back-fill skipped", "error", err)
		return fs, &models.Notice{Level: models.NoticeInfo, Message: models.MsgPostcodeMiss}, nil
	}

	filled, err := s.update(ctx, fs.ID, func(cur *models.FormSession) error {
		// the user kept typing while the lookup ran
		if cur.Form.PostalCode != cep {
			return errStale
		}
		cur.Form.Street = address.Street
		cur.Form.District = address.District
		cur.Form.City = address.City
		cur.Form.State = address.State
		cur.Focus = models.FieldNumber
		return nil
	})
	if errors.Is(err, errStale) {
		current, findErr := s.find(ctx, fs.ID)
		return current, nil, findErr
	}
	if err != nil {
		return nil, nil, err
	}
	return filled, nil, nil
}

var errStale = errors.New("session changed during lookup")

// AfterSave resolves the choice offered after a successful save. In create
// mode another=true clears the form for the next entry; every other case
// closes the session and navigates to the list.
func (s *FormService) AfterSave(ctx context.Context, sessionID id.SessionID, another bool) (AfterSaveResult, error) {
	var result AfterSaveResult
	fs, err := s.update(ctx, sessionID, func(fs *models.FormSession) error {
		if !fs.Saved {
			return dErrors.New(dErrors.CodeBadRequest, models.MsgNothingSaved)
		}
		if fs.IsEdit() || !another {
			result.Navigate = true
			return nil
		}
		fs.Reset(requesttime.Now(ctx))
		return nil
	})
	if err != nil {
		return result, err
	}
	if result.Navigate {
		return result, s.Close(ctx, sessionID)
	}
	result.Session = fs
	return result, nil
}

// Leave answers whether leaving the page should ask for confirmation.
func (s *FormService) Leave(ctx context.Context, sessionID id.SessionID) (LeaveCheck, error) {
	fs, err := s.find(ctx, sessionID)
	if err != nil {
		return LeaveCheck{}, err
	}
	if !fs.WarnOnLeave() {
		return LeaveCheck{}, nil
	}
	return LeaveCheck{Warn: true, Message: models.MsgUnsaved}, nil
}

// Close discards a session. Closing an unknown session is not an error.
func (s *FormService) Close(ctx context.Context, sessionID id.SessionID) error {
	key := sessionID.String()
	s.locks.Lock(key)
	err := s.sessions.Delete(ctx, sessionID)
	s.locks.Unlock(key)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	s.setOpenSessions(s.sessions.Count())
	return nil
}

// SweepExpired drops sessions idle past the store's TTL.
func (s *FormService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	s.setOpenSessions(s.sessions.Count())
	if n > 0 {
		s.logger.DebugContext(ctx, "expired form sessions removed", "count", n)
	}
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *FormService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := s.SweepExpired(ctx, now); err != nil {
				s.logger.WarnContext(ctx, "form session sweep failed", "error", err)
			}
		}
	}
}

func (s *FormService) find(ctx context.Context, sessionID id.SessionID) (*models.FormSession, error) {
	fs, err := s.sessions.Find(ctx, sessionID, requesttime.Now(ctx))
	if errors.Is(err, session.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, models.MsgFormExpired)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	return fs, nil
}

// update loads a session, applies fn and saves the result under the
// session's lock. Nothing is saved when fn fails.
func (s *FormService) update(ctx context.Context, sessionID id.SessionID, fn func(*models.FormSession) error) (*models.FormSession, error) {
	key := sessionID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	fs, err := s.find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(fs); err != nil {
		return nil, err
	}
	fs.UpdatedAt = requesttime.Now(ctx)
	if err := s.sessions.Save(ctx, fs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgSaveFailed)
	}
	return fs.Clone(), nil
}
