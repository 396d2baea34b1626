package session

import (
	"context"
	"sort"
	"sync"

	"github.com/coder/quartz"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	clock    quartz.Clock
}

// NewMemoryStore returns an empty store that expires sessions against clock.
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		clock:    clock,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || s.Expired(m.clock.Now()) {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) ListByRoom(_ context.Context, room string, kind Kind) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.clock.Now()
	var out []*Session
	for _, s := range m.sessions {
		if s.Room != room || s.Kind != kind || s.Expired(now) {
			continue
		}
		out = append(out, clone(s))
	}
	sortByUpdated(out)
	return out, nil
}

func sortByUpdated(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}
