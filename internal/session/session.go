// Package session persists game documents between actions.
//
// A Session wraps one game's state document with the identity, room and
// timestamps needed to store and expire it. Engines never see sessions; a
// caller decodes Session.State into the matching game type, applies an
// action, and saves the re-encoded document back through a Manager.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Kind names the game a session holds.
type Kind string

const (
	KindChain    Kind = "chain"
	KindWordMine Kind = "wordmine"
	KindZiddler  Kind = "ziddler"
)

// NoRoom is the room assigned to sessions created without one.
const NoRoom = "NO_ROOM"

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is a persisted game.
type Session struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Room      string          `json:"room"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	TTL       time.Time       `json:"ttl"`
	State     json.RawMessage `json:"state"`
}

// Expired reports whether the session's TTL has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.TTL.IsZero() && !now.Before(s.TTL)
}

// Valid reports whether k is a known game kind.
func (k Kind) Valid() bool {
	switch k {
	case KindChain, KindWordMine, KindZiddler:
		return true
	}
	return false
}

// Store persists sessions. Put overwrites unconditionally; the last writer wins.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// ListByRoom returns live sessions of kind in room, most recently updated first.
	ListByRoom(ctx context.Context, room string, kind Kind) ([]*Session, error)
}

func clone(s *Session) *Session {
	c := *s
	c.State = append(json.RawMessage(nil), s.State...)
	return &c
}
