// Package session owns the process-scoped wallet session record.
package session

import (
	"sync"

	"rektlink/internal/domain"
	"rektlink/internal/util/memzero"
)

// Store holds the wallet session at process scope, outside any single
// consumer, so a completed handshake survives consumer churn. Updates
// replace the whole record; there is no per-field mutation.
type Store struct {
	mu  sync.RWMutex
	cur domain.Session
}

// NewStore returns an empty, disconnected session store.
func NewStore() *Store { return &Store{} }

// Current returns a snapshot of the session record.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Set replaces the whole session record.
func (s *Store) Set(sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = sess
}

// Clear wipes the shared secret and resets the record to disconnected.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.SharedSecret != nil {
		memzero.Zero32((*[32]byte)(s.cur.SharedSecret))
	}
	s.cur = domain.Session{}
}

// Compile-time assertion that Store implements domain.SessionStore.
var _ domain.SessionStore = (*Store)(nil)
