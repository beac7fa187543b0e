package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
	"github.com/pk-mender/desafiojr/pkg/platform/audit/metrics"
)

// Publisher hands audit events to a Store, either inline or through a
// buffered channel drained by one background goroutine.
type Publisher struct {
	store   audit.Store
	events  chan audit.Event
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   bool
	once    sync.Once
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if p.metrics != nil {
			p.metrics.DecQueueDepth()
		}
		if err := p.persist(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"customer_id", event.CustomerID,
			)
		}
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	if p.metrics != nil {
		p.metrics.ObservePersist(time.Since(start).Seconds(), err)
	}
	return err
}

// Close stops accepting events and waits for the queue to drain.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.async && p.events != nil {
			close(p.events)
			p.wg.Wait()
		}
	})
}

// Emit never blocks in async mode: a full buffer drops the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if !p.async {
		return p.persist(ctx, event)
	}

	select {
	case p.events <- event:
		if p.metrics != nil {
			p.metrics.IncEventsEnqueued()
			p.metrics.IncQueueDepth()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.metrics != nil {
			p.metrics.IncEventsDropped()
		}
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action,
				"customer_id", event.CustomerID,
			)
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}
