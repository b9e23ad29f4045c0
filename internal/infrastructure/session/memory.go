// Package session holds the in-process session store used by default.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/oblivions/storefront/internal/core/domain"
)

// MemoryStore keeps sessions in a map. Everything is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

func (m *MemoryStore) Save(_ context.Context, sess *domain.Session) error {
	m.mu.Lock()
	m.sessions[sess.ID] = *sess
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len reports how many sessions are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions that expired before now and returns how many were
// removed. Lookups of expired sessions remove them as well, so calling
// Sweep is optional.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, sess := range m.sessions {
		if sess.ExpiredAt(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
