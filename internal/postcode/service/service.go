// Package service resolves postal codes through a cache in front of the
// upstream lookup. Concurrent lookups for the same code share one upstream call.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/internal/postcode"
	"github.com/pk-mender/desafiojr/internal/postcode/metrics"
	"github.com/pk-mender/desafiojr/internal/postcode/store"
	"github.com/pk-mender/desafiojr/pkg/platform/circuit"
)

// Lookuper is the upstream postal code API.
type Lookuper interface {
	Lookup(ctx context.Context, digits string) (postcode.Address, error)
}

// Cache stores resolved addresses. Find returns store.ErrNotFound on a miss.
type Cache interface {
	Find(ctx context.Context, digits string) (postcode.Address, error)
	Save(ctx context.Context, digits string, address postcode.Address) error
}

type Service struct {
	upstream Lookuper
	cache    Cache
	group    singleflight.Group
	breaker  *circuit.Breaker
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithBreaker fails lookups fast while the upstream keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(upstream Lookuper, opts ...Option) *Service {
	s := &Service{
		upstream: upstream,
		tracer:   tracer.NewNoop(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves a CEP in any formatting.
//
// Errors: postcode.ErrInvalidCode for inputs without eight digits,
// postcode.ErrNotFound when the code does not exist, anything else is an
// upstream failure. Cache failures are logged and never fail the lookup.
func (s *Service) Lookup(ctx context.Context, cep string) (address postcode.Address, err error) {
	digits, err := postcode.Normalize(cep)
	if err != nil {
		return postcode.Address{}, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanPostcodeCall)
	defer func() {
		if errors.Is(err, postcode.ErrNotFound) {
			span.SetAttributes(tracer.String(tracer.AttrOutcome, metrics.OutcomeNotFound))
			span.End(nil)
			return
		}
		span.End(err)
	}()

	if s.cache != nil {
		cached, cacheErr := s.cache.Find(ctx, digits)
		if cacheErr == nil {
			span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
			return cached, nil
		}
		if !errors.Is(cacheErr, store.ErrNotFound) {
			s.logger.WarnContext(ctx, "postcode cache read failed", "error", cacheErr)
		}
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	// The shared call must outlive any single caller's cancellation.
	detached := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(digits, func() (any, error) {
		return s.fetch(detached, digits)
	})
	if shared && s.metrics != nil {
		s.metrics.RecordShared()
	}
	if err != nil {
		return postcode.Address{}, err
	}
	return v.(postcode.Address), nil
}

func (s *Service) fetch(ctx context.Context, digits string) (postcode.Address, error) {
	if s.breaker != nil && !s.breaker.Allow() {
		return postcode.Address{}, postcode.ErrUnavailable
	}

	start := time.Now()
	address, err := s.upstream.Lookup(ctx, digits)
	s.observe(err, time.Since(start))
	s.track(ctx, err)
	if err != nil {
		if !errors.Is(err, postcode.ErrNotFound) {
			s.logger.WarnContext(ctx, "postcode lookup failed", "error", err)
		}
		return postcode.Address{}, err
	}

	if s.cache != nil {
		if saveErr := s.cache.Save(ctx, digits, address); saveErr != nil {
			s.logger.WarnContext(ctx, "postcode cache write failed", "error", saveErr)
		}
	}
	return address, nil
}

// track feeds the breaker. A code that does not exist is a healthy answer.
func (s *Service) track(ctx context.Context, err error) {
	if s.breaker == nil {
		return
	}
	if err != nil && !errors.Is(err, postcode.ErrNotFound) {
		if s.breaker.RecordFailure().Opened {
			s.logger.ErrorContext(ctx, "circuit breaker opened", "circuit", s.breaker.Name(), "error", err)
		}
		return
	}
	if s.breaker.RecordSuccess().Closed {
		s.logger.InfoContext(ctx, "circuit breaker closed", "circuit", s.breaker.Name())
	}
}

func (s *Service) observe(err error, d time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeFound
	switch {
	case errors.Is(err, postcode.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveLookup(outcome, d.Seconds())
}
