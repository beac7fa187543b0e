package service

import (
	"context"
	"log/slog"

	"github.com/pk-mender/desafiojr/internal/customer/metrics"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/pkg/platform/audit"
)

// Submission modes as they appear in metric labels and spans.
const (
	modeCreate = "create"
	modeEdit   = "edit"
)

// observers carries the collaborators both flows share. Every field has a
// safe default, so services work with no options at all.
type observers struct {
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
	audit   AuditLogger
}

// Option configures a ListService or FormService.
type Option func(*observers)

func WithTracer(t tracer.Tracer) Option {
	return func(o *observers) {
		if t != nil {
			o.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *observers) {
		o.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *observers) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAudit sets where completed mutations are recorded.
func WithAudit(a AuditLogger) Option {
	return func(o *observers) {
		o.audit = a
	}
}

func newObservers(opts []Option) observers {
	o := observers{
		tracer: tracer.NewNoop(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *observers) recordSubmission(mode, outcome string) {
	if o.metrics != nil {
		o.metrics.RecordSubmission(mode, outcome)
	}
}

func (o *observers) recordDelete(outcome string) {
	if o.metrics != nil {
		o.metrics.RecordDelete(outcome)
	}
}

func (o *observers) recordListLoad(outcome string) {
	if o.metrics != nil {
		o.metrics.RecordListLoad(outcome)
	}
}

func (o *observers) setOpenSessions(n int) {
	if o.metrics != nil {
		o.metrics.SetOpenSessions(n)
	}
}

func (o *observers) logAudit(ctx context.Context, action audit.AuditEvent, customerID, cpf string) {
	if o.audit == nil {
		return
	}
	event := audit.Event{Action: string(action), CustomerID: customerID}
	if cpf != "" {
		event.CPFHash = tracer.HashCPF(cpf)
	}
	o.audit.Log(ctx, event)
}
