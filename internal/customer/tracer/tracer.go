// Package tracer provides a lightweight tracing abstraction for the customer
// registry flows and the gateway calls underneath them.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"

	"github.com/pk-mender/desafiojr/internal/platform/privacy"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanFormSubmit,
	//       tracer.String(tracer.AttrCPFHash, tracer.HashCPF(form.CPF)),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashCPF returns a short digest of a CPF so traces can be correlated
// without carrying the number itself.
func HashCPF(cpf string) string {
	return privacy.HashCPF(cpf)
}

// Span names.
const (
	SpanListLoad     = "customer.list.load"
	SpanListDelete   = "customer.list.delete"
	SpanFormOpen     = "customer.form.open"
	SpanFormSubmit   = "customer.form.submit"
	SpanFormPostcode = "customer.form.postcode"
	SpanGatewayCall  = "customer.gateway.call"
	SpanPostcodeCall = "postcode.lookup"
)

// Attribute keys.
const (
	AttrOperation   = "gateway.operation"
	AttrStatusCode  = "http.status_code"
	AttrCustomerID  = "customer.id"
	AttrCPFHash     = "customer.cpf_hash"
	AttrPage        = "list.page"
	AttrSortColumn  = "list.sort"
	AttrResultCount = "list.result_count"
	AttrTotal       = "list.total"
	AttrMode        = "form.mode"
	AttrOutcome     = "outcome"
	AttrCacheHit    = "cache.hit"
)

// Event names.
const (
	EventDuplicateFound = "duplicate.found"
	EventAuditEmitted   = "audit.emitted"
)
