package service

import (
	"context"
	"strings"

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

func (s *ServiceSuite) TestLoad() {
	s.Run("forces the configured page size and normalizes the query", func() {
		var sent models.Query
		s.gw.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q models.Query) (models.Page, error) {
				sent = q
				return models.Page{Records: []models.Customer{fixtures.Customer("1", fixtures.ValidCPF1)}, Total: 1, TotalKnown: true}, nil
			})

		res, err := s.list.Load(s.ctx, models.Query{Page: 0, PageSize: 500, Sort: models.Sort{Column: "bogus"}})
		s.Require().NoError(err)
		s.Equal(10, sent.PageSize)
		s.Equal(1, sent.Page)
		s.Equal(models.DefaultSort, sent.Sort)
		s.Equal(sent, res.Query)
		s.Len(res.Page.Records, 1)

		span := s.recorder.Named(tracer.SpanListLoad)[0]
		s.Equal(int64(1), span.Attrs[tracer.AttrResultCount])
		s.Equal(int64(1), span.Attrs[tracer.AttrTotal])
	})

	s.Run("translates a transport failure and keeps the query", func() {
		s.gw.EXPECT().List(gomock.Any(), gomock.Any()).
			Return(models.Page{}, &gateway.GatewayError{Category: gateway.ErrorOutage, Op: gateway.OpList})

		q := s.list.Initial().WithFilter("Ana", "")
		res, err := s.list.Load(s.ctx, q)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Equal(models.MsgListFailed, err.Error())
		s.Equal("Ana", res.Query.Filter.Name)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ListLoadsTotal.WithLabelValues("error")))
	})
}

func (s *ServiceSuite) TestSearchPartialNameResetsToFirstPage() {
	all := []models.Customer{
		{ID: "1", Name: "João Silva"},
		{ID: "2", Name: "Maria Souza"},
		{ID: "3", Name: "Jorge Lima"},
	}
	s.gw.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q models.Query) (models.Page, error) {
			var matched []models.Customer
			for _, c := range all {
				if strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.Filter.Name)) {
					matched = append(matched, c)
				}
			}
			return models.Page{Records: matched, Total: len(matched), TotalKnown: true}, nil
		})

	current := s.list.Initial()
	current.Page = 3
	res, err := s.list.Search(s.ctx, current, "Jo", "")
	s.Require().NoError(err)

	s.Equal(1, res.Query.Page)
	s.Equal("Jo", res.Query.Filter.Name)
	s.Require().Len(res.Page.Records, 2)
	for _, c := range res.Page.Records {
		s.True(strings.HasPrefix(c.Name, "Jo"))
	}
}

func (s *ServiceSuite) TestClearKeepsSort() {
	s.gw.EXPECT().List(gomock.Any(), gomock.Any()).Return(models.Page{TotalKnown: true}, nil)

	q := s.list.Initial().WithFilter("Ana", fixtures.ValidCPF1).SortedBy(models.SortByEmail)
	q.Page = 2
	res, err := s.list.Clear(s.ctx, q)
	s.Require().NoError(err)
	s.True(res.Query.Filter.IsEmpty())
	s.Equal(1, res.Query.Page)
	s.Equal(models.SortByEmail, res.Query.Sort.Column)
}

func (s *ServiceSuite) TestSort() {
	s.Run("toggles direction on the same column", func() {
		s.gw.EXPECT().List(gomock.Any(), gomock.Any()).Return(models.Page{TotalKnown: true}, nil)

		res, err := s.list.Sort(s.ctx, s.list.Initial(), models.SortByName)
		s.Require().NoError(err)
		s.Equal(models.SortDesc, res.Query.Sort.Direction)
		s.Equal(" ▼", res.Query.SortIndicators()[models.SortByName])
		s.Empty(res.Query.SortIndicators()[models.SortByCPF])
	})

	s.Run("rejects unknown columns without a request", func() {
		_, err := s.list.Sort(s.ctx, s.list.Initial(), "password")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestPaginate() {
	s.Run("next issues a retrieval for the following page", func() {
		s.gw.EXPECT().List(gomock.Any(), gomock.Any()).Return(models.Page{TotalKnown: true, Total: 25}, nil)

		res, moved, err := s.list.Paginate(s.ctx, s.list.Initial(), models.DirectionNext, PageInfo{Total: 25, Known: true})
		s.Require().NoError(err)
		s.True(moved)
		s.Equal(2, res.Query.Page)
	})

	s.Run("next at the last page is a no-op", func() {
		q := s.list.Initial()
		q.Page = 3
		res, moved, err := s.list.Paginate(s.ctx, q, models.DirectionNext, PageInfo{Total: 25, Known: true})
		s.Require().NoError(err)
		s.False(moved)
		s.Equal(3, res.Query.Page)
	})

	s.Run("previous at page one is a no-op", func() {
		_, moved, err := s.list.Paginate(s.ctx, s.list.Initial(), models.DirectionPrevious, PageInfo{Total: 25, Known: true})
		s.Require().NoError(err)
		s.False(moved)
	})

	s.Run("unknown total disables pagination", func() {
		_, moved, err := s.list.Paginate(s.ctx, s.list.Initial(), models.DirectionNext, PageInfo{})
		s.Require().NoError(err)
		s.False(moved)
	})
}

func (s *ServiceSuite) TestDelete() {
	s.Run("without confirmation sends nothing", func() {
		_, err := s.list.Delete(s.ctx, s.list.Initial(), "7", false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotConfirmed))
		s.Equal(models.MsgConfirmDelete, err.Error())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.DeletesTotal.WithLabelValues("declined")))
	})

	s.Run("with confirmation removes and re-fetches the same query", func() {
		q := s.list.Initial().WithFilter("Jo", "")
		gomock.InOrder(
			s.gw.EXPECT().Remove(gomock.Any(), id.CustomerID("7")).Return(nil),
			s.gw.EXPECT().List(gomock.Any(), q).Return(models.Page{TotalKnown: true}, nil),
		)

		out, err := s.list.Delete(s.ctx, q, "7", true)
		s.Require().NoError(err)
		s.Equal(id.CustomerID("7"), out.Deleted)
		s.NoError(out.RefreshErr)
		s.Equal(q, out.List.Query)
		s.Contains(s.auditActions(), string(audit.EventCustomerDeleted))
	})

	s.Run("refresh failure does not undo the delete", func() {
		s.gw.EXPECT().Remove(gomock.Any(), id.CustomerID("8")).Return(nil)
		s.gw.EXPECT().List(gomock.Any(), gomock.Any()).
			Return(models.Page{}, &gateway.GatewayError{Category: gateway.ErrorTimeout, Op: gateway.OpList})

		out, err := s.list.Delete(s.ctx, s.list.Initial(), "8", true)
		s.Require().NoError(err)
		s.True(dErrors.HasCode(out.RefreshErr, dErrors.CodeTimeout))
	})

	s.Run("remove failure surfaces an error", func() {
		s.gw.EXPECT().Remove(gomock.Any(), id.CustomerID("9")).
			Return(&gateway.GatewayError{Category: gateway.ErrorOutage, Op: gateway.OpRemove})

		_, err := s.list.Delete(s.ctx, s.list.Initial(), "9", true)
		s.Equal(models.MsgDeleteFailed, err.Error())
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
