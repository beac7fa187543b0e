// Package domain provides the value types and pure rules shared by the customer registry.
package domain

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// CustomerID is the opaque identifier assigned by the customer store on creation.
// The store may emit it as a JSON number or string; it is always carried as text.
type CustomerID string

// SessionID identifies one open form session in the view layer.
type SessionID uuid.UUID

func (id CustomerID) String() string { return string(id) }
func (id CustomerID) IsNil() bool    { return id == "" }

// UnmarshalJSON accepts string, number and null identifiers.
func (id *CustomerID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = CustomerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = CustomerID(n.String())
	return nil
}

// ParseCustomerID validates an identifier received at a trust boundary.
func ParseCustomerID(s string) (CustomerID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "customer ID cannot be empty")
	}
	return CustomerID(s), nil
}

func NewSessionID() SessionID { return SessionID(uuid.New()) }

func ParseSessionID(s string) (SessionID, error) {
	if s == "" {
		return SessionID(uuid.Nil), dErrors.New(dErrors.CodeBadRequest, "session ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return SessionID(uuid.Nil), dErrors.New(dErrors.CodeBadRequest, "invalid session ID format")
	}
	return SessionID(parsed), nil
}

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
