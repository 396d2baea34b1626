package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/alextwoods/woodsgames/internal/gameid"
)

// TTLPolicy is how long a session of one kind lives without being saved.
type TTLPolicy struct {
	Pending time.Duration // before the game starts
	Active  time.Duration // once the game is under way
}

// DefaultTTLs keeps unstarted Sequence-Board games briefly and started ones
// for a month; letter games are short-lived either way.
var DefaultTTLs = map[Kind]TTLPolicy{
	KindChain:    {Pending: 30 * time.Minute, Active: 30 * 24 * time.Hour},
	KindWordMine: {Pending: 2 * time.Hour, Active: 2 * time.Hour},
	KindZiddler:  {Pending: 2 * time.Hour, Active: 2 * time.Hour},
}

// Manager stamps identity, timestamps and TTL onto sessions before storing them.
type Manager struct {
	store  Store
	clock  quartz.Clock
	ids    *gameid.Generator
	ttls   map[Kind]TTLPolicy
	logger *log.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the clock used for timestamps and expiry.
func WithClock(clock quartz.Clock) ManagerOption {
	return func(m *Manager) { m.clock = clock }
}

// WithIDGenerator sets the session ID generator.
func WithIDGenerator(ids *gameid.Generator) ManagerOption {
	return func(m *Manager) { m.ids = ids }
}

// WithTTLs overrides the TTL policy for the given kinds.
func WithTTLs(ttls map[Kind]TTLPolicy) ManagerOption {
	return func(m *Manager) {
		for k, p := range ttls {
			m.ttls[k] = p
		}
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		clock:  quartz.NewReal(),
		ids:    gameid.NewGenerator(nil),
		ttls:   make(map[Kind]TTLPolicy, len(DefaultTTLs)),
		logger: log.Default(),
	}
	for k, p := range DefaultTTLs {
		m.ttls[k] = p
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithPrefix("session")
	return m
}

// Create stores a new pending session holding state.
func (m *Manager) Create(ctx context.Context, kind Kind, room string, state any) (*Session, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown game kind %q", kind)
	}
	if room == "" {
		room = NoRoom
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	now := m.clock.Now()
	s := &Session{
		ID:        m.ids.Generate(),
		Kind:      kind,
		Room:      room,
		CreatedAt: now,
		UpdatedAt: now,
		TTL:       now.Add(m.ttls[kind].Pending),
		State:     data,
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.logger.Info("Created session", "id", s.ID, "kind", kind, "room", room)
	return s, nil
}

// Load returns a live session.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Save replaces the session's state and refreshes updated_at and TTL. started
// selects the active TTL. created_at is only set if it was never stamped.
func (m *Manager) Save(ctx context.Context, s *Session, state any, started bool) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	now := m.clock.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	policy := m.ttls[s.Kind]
	if started {
		s.TTL = now.Add(policy.Active)
	} else {
		s.TTL = now.Add(policy.Pending)
	}
	s.State = data

	if err := m.store.Put(ctx, s); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	m.logger.Debug("Saved session", "id", s.ID, "kind", s.Kind, "started", started)
	return nil
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// ListByRoom returns the live sessions of kind in room, newest first.
func (m *Manager) ListByRoom(ctx context.Context, room string, kind Kind) ([]*Session, error) {
	if room == "" {
		room = NoRoom
	}
	return m.store.ListByRoom(ctx, room, kind)
}
