package service

import (
	"context"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	"github.com/pk-mender/desafiojr/internal/customer/metrics"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/platform/audit"
)

const msgInvalidSort = "Coluna de ordenação inválida."

// ListService runs the list page flow. It holds no page state: every
// operation takes the caller's current Query and returns the next one.
type ListService struct {
	gateway  Gateway
	pageSize int
	observers
}

// PageInfo is the pagination metadata the caller last displayed.
type PageInfo struct {
	Total int
	Known bool
}

// DeleteOutcome reports a completed delete. List is the re-issued retrieval
// for the same query; RefreshErr is set when that retrieval failed, which
// does not undo the delete.
type DeleteOutcome struct {
	Deleted    id.CustomerID
	List       models.ListResult
	RefreshErr error
}

func NewListService(gw Gateway, pageSize int, opts ...Option) *ListService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &ListService{
		gateway:   gw,
		pageSize:  pageSize,
		observers: newObservers(opts),
	}
}

// PageSize is the fixed page size every query is run with.
func (s *ListService) PageSize() int {
	return s.pageSize
}

// Initial is the query the list page opens with.
func (s *ListService) Initial() models.Query {
	return models.NewQuery(s.pageSize)
}

// Load retrieves the page q describes. On failure the returned result still
// carries the normalized query so the caller can keep showing it.
func (s *ListService) Load(ctx context.Context, q models.Query) (result models.ListResult, err error) {
	q = s.normalize(q)
	result.Query = q

	ctx, span := s.tracer.Start(ctx, tracer.SpanListLoad,
		tracer.Int(tracer.AttrPage, q.Page),
		tracer.String(tracer.AttrSortColumn, q.Sort.Column),
	)
	defer func() { span.End(err) }()

	page, err := s.gateway.List(ctx, q)
	if err != nil {
		s.recordListLoad(metrics.OutcomeError)
		s.logger.WarnContext(ctx, "customer list load failed",
			"page", q.Page,
			"error", err,
		)
		return result, gateway.ToDomainError(err, models.MsgListFailed)
	}

	span.SetAttributes(
		tracer.Int(tracer.AttrResultCount, len(page.Records)),
		tracer.Int(tracer.AttrTotal, page.Total),
	)
	s.recordListLoad(metrics.OutcomeSuccess)
	result.Page = page
	return result, nil
}

// Search applies a name and CPF filter and goes back to page 1.
func (s *ListService) Search(ctx context.Context, q models.Query, name, cpf string) (models.ListResult, error) {
	return s.Load(ctx, q.WithFilter(name, cpf))
}

// Clear drops the filter, keeping the sort.
func (s *ListService) Clear(ctx context.Context, q models.Query) (models.ListResult, error) {
	return s.Load(ctx, q.Cleared())
}

// Sort selects column, toggling the direction when it is already selected.
func (s *ListService) Sort(ctx context.Context, q models.Query, column string) (models.ListResult, error) {
	if !models.IsSortColumn(column) {
		return models.ListResult{Query: s.normalize(q)}, &dErrors.Error{
			Code:    dErrors.CodeBadRequest,
			Field:   "sort",
			Message: msgInvalidSort,
		}
	}
	return s.Load(ctx, q.SortedBy(column))
}

// Paginate moves one page in dir. The bool is false when nothing happened:
// the total is unknown, or the move would leave the first or last page. No
// request is made in that case.
func (s *ListService) Paginate(ctx context.Context, q models.Query, dir models.Direction, info PageInfo) (models.ListResult, bool, error) {
	q = s.normalize(q)
	if !info.Known {
		return models.ListResult{Query: q}, false, nil
	}
	next, ok := q.Step(dir, info.Total)
	if !ok {
		return models.ListResult{Query: q}, false, nil
	}
	result, err := s.Load(ctx, next)
	return result, true, err
}

// Delete removes a record and re-issues the retrieval for q. Without
// confirmation it fails with CodeNotConfirmed and sends nothing.
func (s *ListService) Delete(ctx context.Context, q models.Query, customerID id.CustomerID, confirmed bool) (outcome DeleteOutcome, err error) {
	if customerID.IsNil() {
		return outcome, dErrors.New(dErrors.CodeBadRequest, models.MsgNotFound)
	}
	if !confirmed {
		s.recordDelete(metrics.OutcomeDeclined)
		return outcome, dErrors.New(dErrors.CodeNotConfirmed, models.MsgConfirmDelete)
	}

	spanCtx, span := s.tracer.Start(ctx, tracer.SpanListDelete,
		tracer.String(tracer.AttrCustomerID, customerID.String()),
	)
	err = s.gateway.Remove(spanCtx, customerID)
	span.End(err)
	if err != nil {
		s.recordDelete(metrics.OutcomeError)
		s.logger.WarnContext(ctx, "customer delete failed",
			"customer_id", customerID.String(),
			"error", err,
		)
		return outcome, gateway.ToDomainError(err, models.MsgDeleteFailed)
	}

	s.recordDelete(metrics.OutcomeSuccess)
	s.logAudit(ctx, audit.EventCustomerDeleted, customerID.String(), "")

	outcome.Deleted = customerID
	outcome.List, outcome.RefreshErr = s.Load(ctx, q)
	return outcome, nil
}

func (s *ListService) normalize(q models.Query) models.Query {
	q.PageSize = s.pageSize
	return q.Normalized()
}
