package chain

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

// testGameOption configures test game creation
type testGameOption func(*testGameBuilder)

type testGameBuilder struct {
	seed     int64
	players  []string
	cpus     int
	update   SettingsUpdate
	cpuNames []string
}

func withSeed(seed int64) testGameOption {
	return func(b *testGameBuilder) { b.seed = seed }
}

func withPlayers(names ...string) testGameOption {
	return func(b *testGameBuilder) { b.players = names }
}

func withCPUs(n int) testGameOption {
	return func(b *testGameBuilder) { b.cpus = n }
}

func withSettings(u SettingsUpdate) testGameOption {
	return func(b *testGameBuilder) { b.update = u }
}

func ptr[T any](v T) *T { return &v }

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestEngine(t *testing.T, seed int64, names ...string) *Engine {
	t.Helper()
	opts := []Option{
		WithLogger(quietLogger()),
		WithClock(quartz.NewMock(t)),
	}
	if len(names) > 0 {
		opts = append(opts, WithCPUNames(names))
	}
	return NewEngine(randutil.New(seed), opts...)
}

// newTestGame creates a started game with sensible defaults
func newTestGame(t *testing.T, opts ...testGameOption) (*Engine, *Game) {
	t.Helper()
	b := &testGameBuilder{
		seed:    42,
		players: []string{"alice", "bob"},
	}
	for _, opt := range opts {
		opt(b)
	}

	e := newTestEngine(t, b.seed, b.cpuNames...)
	g := e.Fresh()
	for _, p := range b.players {
		require.NoError(t, e.AddPlayer(g, p))
	}
	for range b.cpus {
		_, err := e.AddCPUPlayer(g)
		require.NoError(t, err)
	}
	require.NoError(t, e.UpdateSettings(g, b.update))
	require.NoError(t, e.Start(g))
	return e, g
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// legalMove finds any ordinary card play for the active player.
func legalMove(g *Game) (cardI, row, col int, ok bool) {
	ts := g.TableState
	team := g.PlayerTeam[ts.ActivePlayer]
	for _, c := range ts.Hands[ts.ActivePlayer] {
		card := CardAt(c)
		if card.IsJack() {
			continue
		}
		for _, cell := range ts.Board.Locations(card) {
			r, col := RowCol(cell)
			if ts.Board.ValidPlay(card, r, col, team) {
				return c, r, col, true
			}
		}
	}
	return 0, 0, 0, false
}

func requireConserved(t *testing.T, g *Game) {
	t.Helper()
	cards := g.Cards()
	slices.Sort(cards)
	want := make([]int, DeckSize)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, cards, "card conservation")
}

func requireReuseCap(t *testing.T, b *Board) {
	t.Helper()
	for team, seqs := range b.Sequences {
		for i := range seqs {
			for j := i + 1; j < len(seqs); j++ {
				require.LessOrEqual(t, overlap(seqs[i], seqs[j]), 1, "team %s sequences %v and %v", team, seqs[i], seqs[j])
			}
		}
	}
}
