// Package memory keeps audit events in process memory, for tests and local runs.
package memory

import (
	"context"
	"sync"

	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListAll returns a copy of every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events...), nil
}

// ListByCustomer returns the events for one customer in append order.
func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}
