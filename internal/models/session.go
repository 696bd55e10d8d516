package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-user context passed into the query path. It holds the
// single "last fetched dataset" slot; it lives from StartSession to
// EndSession and is never shared between users.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`

	mu   sync.Mutex
	last *Dataset
}

func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Store overwrites the slot. Callers only store successful fetches.
func (s *Session) Store(d *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = d
	s.LastActivity = time.Now().UTC()
}

// LastDataset returns the slot content, if any.
func (s *Session) LastDataset() (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.last != nil
}

// Clear empties the slot.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now().UTC()
}
