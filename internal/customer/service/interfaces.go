// Package service is the registry controller: the list flow (ListService)
// and the create/edit form flow (FormService). Both talk to the customer API
// only through gateway.Gateway and return domain errors whose messages are
// ready to show to the user.
package service

import (
	"context"
	"time"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/postcode"
	id "github.com/pk-mender/desafiojr/pkg/domain"
	"github.com/pk-mender/desafiojr/pkg/platform/audit"
)

// Gateway is the customer API contract the flows depend on.
type Gateway = gateway.Gateway

// SessionStore holds open form sessions.
// Error Contract: Find and Delete return session.ErrNotFound for unknown or
// expired sessions.
type SessionStore interface {
	Save(ctx context.Context, s *models.FormSession) error
	Find(ctx context.Context, sessionID id.SessionID, now time.Time) (*models.FormSession, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Count() int
}

// FormChecker validates a trimmed form and returns the first failure.
type FormChecker interface {
	Validate(ctx context.Context, f models.Form) error
}

// PostcodeLookup resolves a CEP into an address.
type PostcodeLookup interface {
	Lookup(ctx context.Context, cep string) (postcode.Address, error)
}

// AuditLogger records completed mutations.
type AuditLogger interface {
	Log(ctx context.Context, event audit.Event)
}
