// Package session keeps open form sessions in memory. A session expires once
// it has been idle for longer than the store's TTL.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// ErrNotFound is returned for unknown and expired sessions alike.
var ErrNotFound = errors.New("form session not found")

// DefaultTTL applies when New is given a non-positive TTL.
const DefaultTTL = 30 * time.Minute

// InMemoryFormStore stores copies: callers never share a *FormSession with
// the store, so a session is only changed through Save.
type InMemoryFormStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.FormSession
	ttl      time.Duration
}

// New constructs an empty store.
func New(ttl time.Duration) *InMemoryFormStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryFormStore{
		sessions: make(map[id.SessionID]*models.FormSession),
		ttl:      ttl,
	}
}

func (s *InMemoryFormStore) Save(_ context.Context, session *models.FormSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Find returns a copy of the session unless it is missing or idle past the
// TTL as of now.
func (s *InMemoryFormStore) Find(_ context.Context, sessionID id.SessionID, now time.Time) (*models.FormSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok || s.expired(session, now) {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

func (s *InMemoryFormStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Count returns the number of stored sessions, expired ones included until
// the next sweep.
func (s *InMemoryFormStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DeleteExpired removes every session idle past the TTL as of now.
func (s *InMemoryFormStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemoryFormStore) expired(session *models.FormSession, now time.Time) bool {
	return now.Sub(session.UpdatedAt) > s.ttl
}
