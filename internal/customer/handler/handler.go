// Package handler is the view-binding layer: chi routes that turn browser
// requests into registry controller calls and return JSON view models.
// List state travels in the URL; form state lives in server-side sessions.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/service"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	"github.com/pk-mender/desafiojr/pkg/platform/httputil"
	"github.com/pk-mender/desafiojr/pkg/requestcontext"
)

// ListRoute is where the browser goes after leaving a form.
const ListRoute = "/customers"

// ListFlow is the list page controller.
type ListFlow interface {
	Initial() models.Query
	Load(ctx context.Context, q models.Query) (models.ListResult, error)
	Search(ctx context.Context, q models.Query, name, cpf string) (models.ListResult, error)
	Clear(ctx context.Context, q models.Query) (models.ListResult, error)
	Sort(ctx context.Context, q models.Query, column string) (models.ListResult, error)
	Paginate(ctx context.Context, q models.Query, dir models.Direction, info service.PageInfo) (models.ListResult, bool, error)
	Delete(ctx context.Context, q models.Query, customerID id.CustomerID, confirmed bool) (service.DeleteOutcome, error)
}

// FormFlow is the create/edit form controller.
type FormFlow interface {
	Open(ctx context.Context, customerID id.CustomerID) (*models.FormSession, error)
	Get(ctx context.Context, sessionID id.SessionID) (*models.FormSession, error)
	Input(ctx context.Context, sessionID id.SessionID, field, value string) (*models.FormSession, *models.Notice, error)
	Submit(ctx context.Context, sessionID id.SessionID) (models.SubmitResult, error)
	AfterSave(ctx context.Context, sessionID id.SessionID, another bool) (service.AfterSaveResult, error)
	Leave(ctx context.Context, sessionID id.SessionID) (service.LeaveCheck, error)
	Close(ctx context.Context, sessionID id.SessionID) error
}

type Handler struct {
	list   ListFlow
	form   FormFlow
	logger *slog.Logger
}

func New(list ListFlow, form FormFlow, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{list: list, form: form, logger: logger}
}

// Register mounts the list and form routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/search", h.HandleSearch)
		r.Post("/clear", h.HandleClear)
		r.Post("/paginate", h.HandlePaginate)
		r.Post("/sort", h.HandleSort)
		r.Delete("/{id}", h.HandleDelete)
	})
	r.Route("/forms", func(r chi.Router) {
		r.Post("/", h.HandleOpenForm)
		r.Route("/{session}", func(r chi.Router) {
			r.Get("/", h.HandleGetForm)
			r.Delete("/", h.HandleCloseForm)
			r.Post("/input", h.HandleInput)
			r.Post("/submit", h.HandleSubmit)
			r.Post("/after-save", h.HandleAfterSave)
			r.Get("/leave", h.HandleLeave)
		})
	})
}

// fail logs err at a level matching its status and writes the error view.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	status := httputil.StatusFor(err)
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"status", status,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func notice(level, message string) *models.Notice {
	return &models.Notice{Level: level, Message: message}
}
