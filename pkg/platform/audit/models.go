package audit

import (
	"context"
	"time"
)

// Event is emitted after a customer mutation succeeds. It carries no CPF in
// clear; CPFHash is the short digest used in logs and traces.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	CustomerID string    `json:"customer_id"`
	CPFHash    string    `json:"cpf_hash,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Device     string    `json:"device,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"` // anonymised
}

type AuditEvent string

const (
	EventCustomerCreated   AuditEvent = "customer_created"
	EventCustomerUpdated   AuditEvent = "customer_updated"
	EventCustomerDeleted   AuditEvent = "customer_deleted"
	EventDuplicateRejected AuditEvent = "customer_duplicate_rejected"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
