package explorer

import (
	"sync"

	"edudata-explorer/internal/common/metrics"
	"edudata-explorer/internal/models"
)

// SessionManager owns the open sessions. Each session has its own slot;
// nothing here is shared between them.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*models.Session)}
}

func (m *SessionManager) Create() *models.Session {
	s := models.NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	metrics.ActiveSessions.Inc()
	return s
}

func (m *SessionManager) Get(id string) (*models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// End clears the session's slot and forgets it. It reports whether the
// session existed.
func (m *SessionManager) End(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Clear()
	metrics.ActiveSessions.Dec()
	return true
}

func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
