package ziddler

import (
	"encoding/json"
	"io"
	"slices"
	"strings"
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

// newTestGame starts a game for players, defaulting to a and b.
func newTestGame(t *testing.T, e *Engine, u SettingsUpdate, players ...string) *Game {
	t.Helper()
	if len(players) == 0 {
		players = []string{"a", "b"}
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

func requireConserved(t *testing.T, e *Engine, g *Game) {
	t.Helper()
	cards := slices.Sorted(slices.Values(g.Cards()))
	require.Equal(t, e.Deck().Indices(), cards)
}

// stage swaps player's hand for cards spelling the given letters, taken from
// the deck or else the discard pile. The old hand goes back on the deck.
func stage(t *testing.T, e *Engine, g *Game, player, spelling string) []int {
	t.Helper()
	ts := g.TableState
	ts.Deck = append(ts.Deck, ts.Hands[player]...)
	hand := make([]int, 0, len(spelling))
	for _, r := range spelling {
		letter := string(r)
		c, ok := take(e, &ts.Deck, letter)
		if !ok {
			c, ok = take(e, &ts.Discard, letter)
		}
		require.True(t, ok, "no %s card left to stage", letter)
		hand = append(hand, c)
	}
	ts.Hands[player] = hand
	return slices.Clone(hand)
}

func take(e *Engine, pile *[]int, letter string) (int, bool) {
	for i, c := range *pile {
		if card, _ := e.Deck().Card(c); strings.EqualFold(card.Letter, letter) {
			*pile = slices.Delete(*pile, i, i+1)
			return c, true
		}
	}
	return 0, false
}

// layDownAllButOne draws from the deck and lays the hand down as one word,
// discarding the last card.
func layDownAllButOne(t *testing.T, e *Engine, g *Game) {
	t.Helper()
	player := g.ActivePlayer()
	require.NoError(t, e.Draw(g, player, FromDeck))
	hand := slices.Clone(g.Hand(player))
	require.NoError(t, e.LayDown(t.Context(), g, player, LayDownRequest{
		Words:   [][]int{hand[:len(hand)-1]},
		Discard: hand[len(hand)-1],
	}))
}
