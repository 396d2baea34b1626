// Package gameid generates identifiers for game sessions.
package gameid

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Generator produces session IDs. The entropy source is injectable so tests
// can produce stable IDs; a nil source uses crypto/rand.
type Generator struct {
	entropy io.Reader
}

// NewGenerator creates a generator reading random bits from entropy.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new session ID using the default entropy source.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a time-ordered UUIDv7 in canonical form. IDs generated in
// sequence sort lexically by creation time.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate session id: " + err.Error())
	}
	return id.String()
}

// Validate checks that id is a canonical UUID. Version 4 IDs are accepted
// alongside version 7 so sessions created before the switch still load.
func Validate(id string) error {
	if len(id) != 36 {
		return fmt.Errorf("session ID must be 36 characters, got %d", len(id))
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid session ID %q: %w", id, err)
	}
	switch parsed.Version() {
	case 4, 7:
		return nil
	default:
		return fmt.Errorf("unsupported session ID version %d", parsed.Version())
	}
}
