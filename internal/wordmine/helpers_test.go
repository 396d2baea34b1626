package wordmine

import (
	"encoding/json"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/alextwoods/woodsgames/internal/randutil"
)

func ptr[T any](v T) *T { return &v }

func newTestEngine(t *testing.T, seed int64, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})),
		WithClock(quartz.NewMock(t)),
	}
	return NewEngine(randutil.New(seed), append(base, opts...)...)
}

// newTestGame starts a game for players, defaulting to alice and bob.
func newTestGame(t *testing.T, e *Engine, u SettingsUpdate, players ...string) *Game {
	t.Helper()
	if len(players) == 0 {
		players = []string{"alice", "bob"}
	}
	g := e.Fresh()
	for _, p := range players {
		require.NoError(t, e.AddPlayer(g, p))
	}
	require.NoError(t, e.UpdateSettings(g, u))
	require.NoError(t, e.Start(g))
	return g
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// requireConserved checks every card of the table is in exactly one place.
func requireConserved(t *testing.T, e *Engine, g *Game) {
	t.Helper()
	cards := slices.Sorted(slices.Values(g.Cards()))
	require.Equal(t, e.Deck().Indices(), cards)
}
