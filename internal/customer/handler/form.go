package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/platform/httputil"
)

// SubmitResponse follows a successful save. In create mode Prompt asks
// whether to register another customer and the browser answers through
// after-save; in edit mode the session is already closed and Redirect is set.
type SubmitResponse struct {
	Form          models.FormView `json:"form"`
	Notice        *models.Notice  `json:"notice"`
	CustomerID    string          `json:"customer_id"`
	AskForAnother bool            `json:"ask_for_another"`
	Prompt        string          `json:"prompt,omitempty"`
	Redirect      string          `json:"redirect,omitempty"`
}

type AfterSaveResponse struct {
	Redirect string           `json:"redirect,omitempty"`
	Form     *models.FormView `json:"form,omitempty"`
}

type LeaveResponse struct {
	Warn    bool   `json:"warn"`
	Message string `json:"message,omitempty"`
}

// HandleOpenForm implements POST /forms.
//
// Input: { "id": "12" } for edit mode, {} for a new customer.
func (h *Handler) HandleOpenForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[OpenFormRequest](w, r, h.logger)
	if !ok {
		return
	}
	fs, err := h.form.Open(ctx, domain.CustomerID(req.ID))
	if err != nil {
		h.fail(w, r, "open form failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.NewFormView(fs))
}

// HandleGetForm implements GET /forms/{session}.
func (h *Handler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	fs, err := h.form.Get(r.Context(), sessionID)
	if err != nil {
		h.fail(w, r, "get form failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewFormView(fs))
}

// HandleCloseForm implements DELETE /forms/{session}.
func (h *Handler) HandleCloseForm(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	if err := h.form.Close(r.Context(), sessionID); err != nil {
		h.fail(w, r, "close form failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleInput implements POST /forms/{session}/input. The answer carries
// the masked value and, after a full postal code, the back-filled address.
//
// Input: { "field": "cpf", "value": "52998224725" }
func (h *Handler) HandleInput(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InputRequest](w, r, h.logger)
	if !ok {
		return
	}
	fs, n, err := h.form.Input(ctx, sessionID, req.Field, req.Value)
	if err != nil {
		h.fail(w, r, "form input failed", err)
		return
	}
	view := models.NewFormView(fs)
	view.Notice = n
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSubmit implements POST /forms/{session}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	res, err := h.form.Submit(ctx, sessionID)
	if err != nil {
		h.fail(w, r, "form submit failed", err)
		return
	}

	resp := SubmitResponse{
		Notice:        notice(models.NoticeSuccess, models.MsgSaved),
		CustomerID:    res.Customer.ID.String(),
		AskForAnother: res.AskForAnother,
	}
	if res.AskForAnother {
		resp.Prompt = models.MsgSaveAnother
		fs, err := h.form.Get(ctx, sessionID)
		if err != nil {
			h.fail(w, r, "form reload failed", err)
			return
		}
		resp.Form = models.NewFormView(fs)
	} else {
		if _, err := h.form.AfterSave(ctx, sessionID, false); err != nil {
			h.fail(w, r, "form close after save failed", err)
			return
		}
		resp.Redirect = ListRoute
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleAfterSave implements POST /forms/{session}/after-save.
//
// Input: { "another": true }
func (h *Handler) HandleAfterSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[AfterSaveRequest](w, r, h.logger)
	if !ok {
		return
	}
	out, err := h.form.AfterSave(ctx, sessionID, req.Another)
	if err != nil {
		h.fail(w, r, "after save failed", err)
		return
	}
	if out.Navigate {
		httputil.WriteJSON(w, http.StatusOK, AfterSaveResponse{Redirect: ListRoute})
		return
	}
	view := models.NewFormView(out.Session)
	httputil.WriteJSON(w, http.StatusOK, AfterSaveResponse{Form: &view})
}

// HandleLeave implements GET /forms/{session}/leave, the unsaved-changes
// guard. An expired session has nothing left to lose, so it never warns.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	check, err := h.form.Leave(r.Context(), sessionID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		httputil.WriteJSON(w, http.StatusOK, LeaveResponse{})
		return
	}
	if err != nil {
		h.fail(w, r, "leave check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LeaveResponse{Warn: check.Warn, Message: check.Message})
}

func sessionParam(w http.ResponseWriter, r *http.Request) (domain.SessionID, bool) {
	sessionID, err := domain.ParseSessionID(chi.URLParam(r, "session"))
	if err != nil {
		httputil.WriteError(w, err)
		return sessionID, false
	}
	return sessionID, true
}
