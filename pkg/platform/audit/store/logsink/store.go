// Package logsink writes audit events as structured log records. It is the
// default sink when no broker is configured.
package logsink

import (
	"context"
	"log/slog"

	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"log_type", "audit_sink",
		"action", event.Action,
		"customer_id", event.CustomerID,
		"cpf_hash", event.CPFHash,
		"request_id", event.RequestID,
		"device", event.Device,
		"client_ip", event.ClientIP,
		"timestamp", event.Timestamp,
	)
	return nil
}
