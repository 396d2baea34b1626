package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextwoods/woodsgames/internal/gameerr"
)

func TestAddPlayerBalancesTeams(t *testing.T) {
	e := newTestEngine(t, 42)
	g := e.Fresh()

	for _, p := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, e.AddPlayer(g, p))
	}

	assert.Equal(t, []string{"a", "c", "e"}, g.Teams[Green].Players)
	assert.Equal(t, []string{"b", "d"}, g.Teams[Blue].Players)
	assert.Empty(t, g.Teams[Red].Players)
	assert.Equal(t, Green, g.PlayerTeam["a"])
	assert.Equal(t, Blue, g.PlayerTeam["b"])
	assert.Equal(t, "0x00ff00", g.Teams[Green].Color)
}

func TestAddPlayerRejections(t *testing.T) {
	e := newTestEngine(t, 42)
	g := e.Fresh()
	require.NoError(t, e.AddPlayer(g, "a"))

	err := e.AddPlayer(g, "a")
	assert.True(t, gameerr.IsRejection(err))

	err = e.AddPlayer(g, "")
	assert.True(t, gameerr.IsRejection(err))

	require.NoError(t, e.AddPlayer(g, "b"))
	require.NoError(t, e.Start(g))
	err = e.AddPlayer(g, "c")
	assert.True(t, gameerr.IsRejection(err))
}

func TestAddCPUPlayer(t *testing.T) {
	e := newTestEngine(t, 42, "hal", "data")
	g := e.Fresh()
	require.NoError(t, e.AddPlayer(g, "hal"))

	name, err := e.AddCPUPlayer(g)
	require.NoError(t, err)
	assert.Equal(t, "data", name)
	assert.Equal(t, []string{"data"}, g.CPUPlayers)
	assert.True(t, g.IsCPU("data"))
	assert.False(t, g.IsCPU("hal"))

	_, err = e.AddCPUPlayer(g)
	assert.True(t, gameerr.IsRejection(err))
}

func TestSetPlayerTeam(t *testing.T) {
	e := newTestEngine(t, 42)
	g := e.Fresh()
	require.NoError(t, e.AddPlayer(g, "a"))
	require.NoError(t, e.AddPlayer(g, "b"))

	require.NoError(t, e.SetPlayerTeam(g, "a", Red))
	assert.Empty(t, g.Teams[Green].Players)
	assert.Equal(t, []string{"a"}, g.Teams[Red].Players)
	assert.Equal(t, Red, g.PlayerTeam["a"])

	assert.True(t, gameerr.IsRejection(e.SetPlayerTeam(g, "zed", Red)))
	assert.True(t, gameerr.IsRejection(e.SetPlayerTeam(g, "a", Team("purple"))))
}

func TestUpdateSettings(t *testing.T) {
	e := newTestEngine(t, 42)
	g := e.Fresh()

	require.NoError(t, e.UpdateSettings(g, SettingsUpdate{
		SequenceLength:  ptr(4),
		Board:           ptr(LayoutHorizontal),
		CustomHandCards: ptr(3),
	}))
	assert.Equal(t, 4, g.Settings.SequenceLength)
	assert.Equal(t, 2, g.Settings.SequencesToWin)
	assert.Equal(t, LayoutHorizontal, g.Settings.Board)
	require.NotNil(t, g.Settings.CustomHandCards)
	assert.Equal(t, 3, *g.Settings.CustomHandCards)

	require.NoError(t, e.UpdateSettings(g, SettingsUpdate{CustomHandCards: ptr(0)}))
	assert.Nil(t, g.Settings.CustomHandCards)

	bad := []SettingsUpdate{
		{SequenceLength: ptr(2)},
		{SequencesToWin: ptr(0)},
		{Board: ptr("hex")},
		{CustomHandCards: ptr(-1)},
		{CPUWaitTime: ptr(-1.0)},
	}
	for _, u := range bad {
		before := mustJSON(t, g)
		assert.True(t, gameerr.IsRejection(e.UpdateSettings(g, u)))
		assert.Equal(t, before, mustJSON(t, g))
	}
}

func TestStartDeals(t *testing.T) {
	_, g := newTestGame(t)
	ts := g.TableState

	assert.Equal(t, WaitingToPlay, g.State)
	assert.Equal(t, WaitingToPlay, ts.State)
	assert.Equal(t, 7, ts.NHandCards)
	assert.Len(t, ts.Hands["alice"], 7)
	assert.Len(t, ts.Hands["bob"], 7)
	assert.Len(t, ts.Deck, DeckSize-14)
	assert.Empty(t, ts.Discard)
	assert.Empty(t, ts.Log)
	assert.Equal(t, 0, ts.Turn)
	assert.Contains(t, ts.PlayerOrder, ts.ActivePlayer)
	assert.Equal(t, []string{"bob", "alice"}, ts.PlayerOrder)
	requireConserved(t, g)
}

func TestStartHandSizes(t *testing.T) {
	tests := []struct {
		players int
		custom  *int
		want    int
	}{
		{1, nil, 7},
		{2, nil, 7},
		{3, nil, 6},
		{6, nil, 5},
		{12, nil, 3},
		{14, nil, 3},
		{2, ptr(4), 4},
	}
	for _, tt := range tests {
		var names []string
		for i := range tt.players {
			names = append(names, string(rune('a'+i)))
		}
		_, g := newTestGame(t, withPlayers(names...), withSettings(SettingsUpdate{CustomHandCards: tt.custom}))
		assert.Equal(t, tt.want, g.TableState.NHandCards, "%d players", tt.players)
	}
}

func TestStartRejectsOversizedDeal(t *testing.T) {
	e := newTestEngine(t, 42)
	g := e.Fresh()
	require.NoError(t, e.AddPlayer(g, "a"))
	require.NoError(t, e.AddPlayer(g, "b"))
	require.NoError(t, e.UpdateSettings(g, SettingsUpdate{CustomHandCards: ptr(60)}))

	before := mustJSON(t, g)
	assert.True(t, gameerr.IsRejection(e.Start(g)))
	assert.Equal(t, before, mustJSON(t, g))
}

func TestStartRejectsEmptyGame(t *testing.T) {
	e := newTestEngine(t, 42)
	assert.True(t, gameerr.IsRejection(e.Start(e.Fresh())))
}

func TestPlayerOrderInterleavesTeams(t *testing.T) {
	e := newTestEngine(t, 42)
	g := e.Fresh()
	for _, p := range []string{"g1", "b1", "b2", "b3", "r1"} {
		require.NoError(t, e.AddPlayer(g, p))
	}
	require.NoError(t, e.SetPlayerTeam(g, "b1", Blue))
	require.NoError(t, e.SetPlayerTeam(g, "b2", Blue))
	require.NoError(t, e.SetPlayerTeam(g, "b3", Blue))
	require.NoError(t, e.SetPlayerTeam(g, "g1", Green))
	require.NoError(t, e.SetPlayerTeam(g, "r1", Red))

	assert.Equal(t, []string{"b1", "g1", "r1", "b2", "b3"}, playerOrder(g))
}

func TestPlayCard(t *testing.T) {
	e, g := newTestGame(t)
	ts := g.TableState
	player := ts.ActivePlayer
	other := ts.PlayerOrder[0]
	if other == player {
		other = ts.PlayerOrder[1]
	}

	cardI, row, col, ok := legalMove(g)
	require.True(t, ok)
	deckBefore := len(ts.Deck)

	require.NoError(t, e.PlayCard(g, player, cardI, row, col))

	assert.Equal(t, g.PlayerTeam[player], ts.Board.TokenAt(row, col))
	assert.Len(t, ts.Hands[player], 7)
	assert.Equal(t, []int{cardI}, ts.Discard)
	assert.Len(t, ts.Deck, deckBefore-1)
	assert.Equal(t, 1, ts.Turn)
	assert.Equal(t, 1, g.Turn)
	assert.Equal(t, other, ts.ActivePlayer)

	require.Len(t, ts.Log, 1)
	entry := ts.Log[0]
	assert.Equal(t, LogPlay, entry.Type)
	assert.Equal(t, player, entry.Player)
	assert.Equal(t, cardI, entry.CardI)
	assert.Equal(t, row, entry.Row)
	assert.Equal(t, col, entry.Col)
	requireConserved(t, g)
}

func TestPlayCardRejectionsLeaveDocumentUnchanged(t *testing.T) {
	e, g := newTestGame(t)
	ts := g.TableState
	player := ts.ActivePlayer
	waiting := ts.PlayerOrder[0]
	if waiting == player {
		waiting = ts.PlayerOrder[1]
	}
	cardI, row, col, ok := legalMove(g)
	require.True(t, ok)

	notInHand := -1
	for i := range DeckSize {
		if !containsInt(ts.Hands[player], i) && !CardAt(i).IsJack() {
			notInHand = i
			break
		}
	}

	tests := []struct {
		name   string
		player string
		cardI  int
		row    int
		col    int
	}{
		{"out of turn", waiting, ts.Hands[waiting][0], row, col},
		{"card not in hand", player, notInHand, row, col},
		{"wrong cell", player, cardI, 0, 0},
		{"off board", player, cardI, -1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := mustJSON(t, g)
			err := e.PlayCard(g, tt.player, tt.cardI, tt.row, tt.col)
			require.Error(t, err)
			assert.True(t, gameerr.IsRejection(err))
			assert.Equal(t, before, mustJSON(t, g))
		})
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// stageHand replaces the active player's hand, keeping the game's other
// piles as they are.
func stageHand(g *Game, cards ...int) string {
	player := g.TableState.ActivePlayer
	g.TableState.Hands[player] = cards
	return player
}

func TestPlayCardWinsGame(t *testing.T) {
	e, g := newTestGame(t, withSettings(SettingsUpdate{
		Board:          ptr(LayoutHorizontal),
		SequenceLength: ptr(3),
		SequencesToWin: ptr(1),
	}))
	player := stageHand(g, 1)
	team := g.PlayerTeam[player]
	g.TableState.Board.Tokens[Index(0, 1)] = team
	turn := g.TableState.Turn

	require.NoError(t, e.PlayCard(g, player, 1, 0, 2))

	assert.Equal(t, GameOver, g.State)
	assert.Equal(t, GameOver, g.TableState.State)
	assert.Equal(t, team, g.Winner())
	assert.Equal(t, [][]int{{0, 1, 2}}, g.TableState.Board.Sequences[team])
	assert.Equal(t, [][]int{{0, 1, 2}}, g.TableState.Log[0].NewSequences)
	assert.Equal(t, player, g.TableState.ActivePlayer, "no rotation after a win")
	assert.Equal(t, turn, g.TableState.Turn)

	err := e.PlayCard(g, player, g.TableState.Hands[player][0], 5, 5)
	assert.True(t, gameerr.IsRejection(err))
}

func TestPlayCardDrawsOnFullBoard(t *testing.T) {
	e, g := newTestGame(t, withSettings(SettingsUpdate{Board: ptr(LayoutHorizontal)}))
	player := stageHand(g, 1)
	opponent := Blue
	if g.PlayerTeam[player] == Blue {
		opponent = Green
	}
	board := g.TableState.Board
	for i := range Cells {
		if !isCorner(i) && i != Index(0, 2) {
			board.Tokens[i] = opponent
		}
	}

	require.NoError(t, e.PlayCard(g, player, 1, 0, 2))
	assert.Equal(t, GameOver, g.State)
	assert.Equal(t, Draw, g.Winner())
}

func TestPlayAntiWildRemovesToken(t *testing.T) {
	e, g := newTestGame(t, withSettings(SettingsUpdate{Board: ptr(LayoutHorizontal)}))
	player := stageHand(g, 10)
	opponent := Blue
	if g.PlayerTeam[player] == Blue {
		opponent = Green
	}
	board := g.TableState.Board
	board.Tokens[Index(4, 4)] = opponent
	board.Tokens[Index(4, 5)] = opponent
	board.RecordSequences(opponent, [][]int{{Index(4, 5)}})

	before := mustJSON(t, g)
	assert.True(t, gameerr.IsRejection(e.PlayCard(g, player, 10, 4, 5)), "sequence cells are locked")
	assert.Equal(t, before, mustJSON(t, g))

	require.NoError(t, e.PlayCard(g, player, 10, 4, 4))
	assert.Equal(t, NoTeam, board.TokenAt(4, 4))
	entry := g.TableState.Log[0]
	assert.Equal(t, opponent, entry.Removed)
	assert.Empty(t, entry.NewSequences)
}

func TestPlayCardReshufflesDiscard(t *testing.T) {
	e, g := newTestGame(t)
	ts := g.TableState
	ts.Discard = append(ts.Discard, ts.Deck...)
	ts.Deck = []int{}

	player := ts.ActivePlayer
	cardI, row, col, ok := legalMove(g)
	require.True(t, ok)
	require.NoError(t, e.PlayCard(g, player, cardI, row, col))

	assert.Len(t, ts.Hands[player], 7)
	assert.Empty(t, ts.Discard)
	require.Len(t, ts.Log, 2)
	assert.Equal(t, LogDrawShuffle, ts.Log[0].Type)
	assert.Equal(t, LogPlay, ts.Log[1].Type)
	requireConserved(t, g)
}

func TestPlayCardEmptyDeckAndDiscard(t *testing.T) {
	e, g := newTestGame(t)
	ts := g.TableState
	player := ts.ActivePlayer
	cardI, row, col, ok := legalMove(g)
	require.True(t, ok)
	ts.Deck = []int{}

	require.NoError(t, e.PlayCard(g, player, cardI, row, col))
	// the played card itself is reshuffled and drawn back
	assert.Len(t, ts.Hands[player], 7)
	assert.Contains(t, ts.Hands[player], cardI)
}

func TestRematchAndNewGame(t *testing.T) {
	e, g := newTestGame(t)
	assert.True(t, gameerr.IsRejection(e.Rematch(g)))
	assert.True(t, gameerr.IsRejection(e.NewGame(g)))

	g.State = GameOver
	g.TableState.State = GameOver
	g.TableState.Winner = Green

	require.NoError(t, e.Rematch(g))
	assert.Equal(t, WaitingToPlay, g.State)
	assert.Equal(t, NoTeam, g.Winner())
	assert.Empty(t, g.TableState.Log)
	assert.Equal(t, []string{"alice", "bob"}, g.Players)
	requireConserved(t, g)

	g.State = GameOver
	g.TableState.State = GameOver
	require.NoError(t, e.NewGame(g))
	assert.Equal(t, WaitingForPlayers, g.State)
	assert.Nil(t, g.TableState)
	assert.Equal(t, Green, g.PlayerTeam["alice"])
	require.NoError(t, e.AddPlayer(g, "carol"))
}

func TestOperationsRequireValidDocument(t *testing.T) {
	e := newTestEngine(t, 42)
	g := &Game{State: WaitingForPlayers}

	err := e.AddPlayer(g, "a")
	assert.True(t, errors.Is(err, gameerr.ErrInvalidState))
	assert.False(t, gameerr.IsRejection(err))

	g = e.Fresh()
	g.State = WaitingToPlay
	err = e.PlayCard(g, "a", 0, 0, 1)
	assert.True(t, errors.Is(err, gameerr.ErrInvalidState))
}

func TestExchangeDeadCard(t *testing.T) {
	e, g := newTestGame(t)
	ts := g.TableState
	player := stageHand(g, 1, 2)
	for _, i := range ts.Board.Locations(CardAt(1)) {
		ts.Board.Tokens[i] = Blue
	}
	deckLen := len(ts.Deck)

	err := e.ExchangeDeadCard(g, player, 2)
	require.True(t, gameerr.IsRejection(err), "a live card is not dead")

	require.NoError(t, e.ExchangeDeadCard(g, player, 1))
	assert.NotContains(t, ts.Hands[player], 1)
	assert.Len(t, ts.Hands[player], 2)
	assert.Equal(t, 1, ts.Discard[len(ts.Discard)-1])
	assert.Len(t, ts.Deck, deckLen-1)
	assert.Equal(t, player, ts.ActivePlayer, "exchanging keeps the turn")
	last := ts.Log[len(ts.Log)-1]
	assert.Equal(t, LogDeadCard, last.Type)
	assert.Equal(t, 1, last.CardI)
}

func TestExchangeDeadCardRejectsJacks(t *testing.T) {
	e, g := newTestGame(t)
	player := stageHand(g, 10)
	err := e.ExchangeDeadCard(g, player, 10)
	require.True(t, gameerr.IsRejection(err))
}
