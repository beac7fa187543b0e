package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/pk-mender/desafiojr/internal/customer/gateway/mocks"
	"github.com/pk-mender/desafiojr/internal/customer/metrics"
	"github.com/pk-mender/desafiojr/internal/customer/store/session"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/pkg/platform/audit"
	"github.com/pk-mender/desafiojr/pkg/platform/audit/publisher"
	"github.com/pk-mender/desafiojr/pkg/platform/audit/store/memory"
	"github.com/pk-mender/desafiojr/pkg/platform/middleware/requesttime"
)

// ServiceSuite wires both flows against a mocked customer API, a real
// in-memory session store and an inline audit publisher.
type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	gw       *mocks.MockGateway
	postcode *fakePostcode
	sessions *session.InMemoryFormStore
	audits   *memory.InMemoryStore
	recorder *tracer.Recorder
	metrics  *metrics.Metrics
	now      time.Time
	ctx      context.Context
	list     *ListService
	form     *FormService
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gw = mocks.NewMockGateway(s.ctrl)
	s.postcode = &fakePostcode{}
	s.sessions = session.New(time.Hour)
	s.audits = memory.NewInMemoryStore()
	s.recorder = tracer.NewRecorder()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	s.ctx = requesttime.WithTime(context.Background(), s.now)

	opts := []Option{
		WithTracer(s.recorder),
		WithMetrics(s.metrics),
		WithAudit(audit.NewLogger(nil, publisher.NewPublisher(s.audits))),
	}
	s.list = NewListService(s.gw, 10, opts...)
	s.form = NewFormService(s.gw, s.sessions, NewFormValidator(false, 18), s.postcode, opts...)
}

func (s *ServiceSuite) auditActions() []string {
	events, err := s.audits.ListAll(context.Background())
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}
