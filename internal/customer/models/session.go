package models

import (
	"time"

	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// FormState tracks a form session through its submit lifecycle.
type FormState string

const (
	StatePristine   FormState = "pristine"
	StatePopulated  FormState = "populated"
	StateValidating FormState = "validating"
	StateSubmitting FormState = "submitting"
	StateSubmitted  FormState = "submitted"
	StateRejected   FormState = "rejected"
)

// Labels shown by the form page.
const (
	HeadingCreate = "NOVO CLIENTE"
	HeadingEdit   = "EDITAR CLIENTE"
	LabelSave     = "Salvar"
	LabelUpdate   = "Atualizar"
	LabelBusy     = "Salvando..."
)

// FormSession is one open create or edit form. CustomerID is empty in
// create mode.
type FormSession struct {
	ID         id.SessionID
	CustomerID id.CustomerID
	Form       Form
	State      FormState
	Busy       bool
	Saved      bool
	Focus      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewFormSession opens a session. A non-empty customer and form mean edit mode.
func NewFormSession(sid id.SessionID, customerID id.CustomerID, form Form, now time.Time) *FormSession {
	state := StatePristine
	if !customerID.IsNil() {
		state = StatePopulated
	}
	return &FormSession{
		ID:         sid,
		CustomerID: customerID,
		Form:       form,
		State:      state,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsEdit reports whether the session edits an existing record.
func (s *FormSession) IsEdit() bool {
	return !s.CustomerID.IsNil()
}

func (s *FormSession) Heading() string {
	if s.IsEdit() {
		return HeadingEdit
	}
	return HeadingCreate
}

// ActionLabel is the affirmative button text.
func (s *FormSession) ActionLabel() string {
	switch {
	case s.Busy:
		return LabelBusy
	case s.IsEdit():
		return LabelUpdate
	default:
		return LabelSave
	}
}

// WarnOnLeave reports whether leaving the page should prompt about unsaved
// changes. A completed save suppresses the prompt.
func (s *FormSession) WarnOnLeave() bool {
	return !s.Saved && s.Form.HasContent()
}

// Reset clears the form for another entry in create mode.
func (s *FormSession) Reset(now time.Time) {
	s.CustomerID = ""
	s.Form = Form{}
	s.State = StatePristine
	s.Busy = false
	s.Saved = false
	s.Focus = FieldName
	s.UpdatedAt = now
}

// Clone returns a copy safe to hand out of a store.
func (s *FormSession) Clone() *FormSession {
	c := *s
	return &c
}
