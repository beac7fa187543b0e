package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/service"
	"github.com/pk-mender/desafiojr/pkg/domain"
	"github.com/pk-mender/desafiojr/pkg/platform/httputil"
	pvalidation "github.com/pk-mender/desafiojr/pkg/platform/validation"
)

// DeleteResponse reports a completed delete. List is nil when the refresh
// after the delete failed; RefreshNotice then says why.
type DeleteResponse struct {
	Deleted       string           `json:"deleted"`
	Notice        *models.Notice   `json:"notice"`
	List          *models.ListView `json:"list,omitempty"`
	RefreshNotice *models.Notice   `json:"refresh_notice,omitempty"`
}

// HandleList implements GET /customers with the list state in the URL.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, ok := h.urlQuery(w, r)
	if !ok {
		return
	}
	res, err := h.list.Load(r.Context(), q)
	h.writeList(w, r, res, err)
}

// HandleSearch implements POST /customers/search.
//
// Input: { "name": "Jo", "cpf": "" }
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := h.urlQuery(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SearchRequest](w, r, h.logger)
	if !ok {
		return
	}
	res, err := h.list.Search(r.Context(), q, req.Name, req.CPF)
	h.writeList(w, r, res, err)
}

// HandleClear implements POST /customers/clear.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	q, ok := h.urlQuery(w, r)
	if !ok {
		return
	}
	res, err := h.list.Clear(r.Context(), q)
	h.writeList(w, r, res, err)
}

// HandleSort implements POST /customers/sort.
//
// Input: { "column": "email" }
func (h *Handler) HandleSort(w http.ResponseWriter, r *http.Request) {
	q, ok := h.urlQuery(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SortRequest](w, r, h.logger)
	if !ok {
		return
	}
	res, err := h.list.Sort(r.Context(), q, req.Column)
	h.writeList(w, r, res, err)
}

// HandlePaginate implements POST /customers/paginate. A move that is not
// possible answers 204 and the browser keeps what it shows.
//
// Input: { "direction": "next", "total": 42, "total_known": true }
func (h *Handler) HandlePaginate(w http.ResponseWriter, r *http.Request) {
	q, ok := h.urlQuery(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PaginateRequest](w, r, h.logger)
	if !ok {
		return
	}
	res, moved, err := h.list.Paginate(r.Context(), q, req.Direction, service.PageInfo{Total: req.Total, Known: req.TotalKnown})
	if err == nil && !moved {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeList(w, r, res, err)
}

// HandleDelete implements DELETE /customers/{id}?confirm=true. Without
// confirm=true nothing is removed and the answer asks for confirmation.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q, ok := h.urlQuery(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "id")
	if err := pvalidation.CheckStringLength("id", raw, pvalidation.MaxCustomerIDLength); err != nil {
		httputil.WriteError(w, err)
		return
	}
	customerID, err := domain.ParseCustomerID(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	confirmed := r.URL.Query().Get(paramConfirm) == "true"
	out, err := h.list.Delete(r.Context(), q, customerID, confirmed)
	if err != nil {
		h.fail(w, r, "customer delete failed", err)
		return
	}

	resp := DeleteResponse{
		Deleted: out.Deleted.String(),
		Notice:  notice(models.NoticeSuccess, models.MsgDeleted),
	}
	if out.RefreshErr != nil {
		resp.RefreshNotice = notice(models.NoticeError, messageOf(out.RefreshErr))
	} else {
		view := models.NewListView(out.List)
		resp.List = &view
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) urlQuery(w http.ResponseWriter, r *http.Request) (models.Query, bool) {
	q, err := queryFromURL(r.URL.Query(), h.list.Initial())
	if err != nil {
		httputil.WriteError(w, err)
		return q, false
	}
	return q, true
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, res models.ListResult, err error) {
	if err != nil {
		h.fail(w, r, "customer list failed", err)
		return
	}
	if res.Page.TotalKnown {
		w.Header().Set("X-Total-Count", strconv.Itoa(res.Page.Total))
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewListView(res))
}

func messageOf(err error) string {
	return httputil.ErrorBody(err).Message
}
