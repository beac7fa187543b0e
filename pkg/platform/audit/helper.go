package audit

import (
	"context"
	"log/slog"

	"github.com/pk-mender/desafiojr/internal/platform/privacy"
	"github.com/pk-mender/desafiojr/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes audit events to the text log and hands them to an emitter.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Both arguments may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log enriches the event with the request id, device and anonymised client
// IP found in ctx, then logs and emits it. Emission failures are logged only.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	Enrich(ctx, &event)
	l.logToText(ctx, event)
	l.emit(ctx, event)
}

// Enrich fills request-scoped fields that are still empty.
func Enrich(ctx context.Context, event *Event) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	if event.ClientIP == "" {
		if ip := requestcontext.ClientIP(ctx); ip != "" {
			event.ClientIP = privacy.AnonymizeIP(ip)
		}
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
}

func (l *Logger) logToText(ctx context.Context, event Event) {
	if l.textLogger == nil {
		return
	}
	l.textLogger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"customer_id", event.CustomerID,
		"cpf_hash", event.CPFHash,
		"request_id", event.RequestID,
		"device", event.Device,
	)
}

func (l *Logger) emit(ctx context.Context, event Event) {
	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event.Action,
		)
	}
}
