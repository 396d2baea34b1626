package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestMovePrefersCompletingSequence(t *testing.T) {
	_, g := newTestGame(t, withSettings(SettingsUpdate{
		Board:          ptr(LayoutHorizontal),
		SequenceLength: ptr(3),
	}))
	player := stageHand(g, 1, 44) // 2H, 6C
	team := g.PlayerTeam[player]
	g.TableState.Board.Tokens[Index(0, 1)] = team

	move, err := BestMove(g)
	require.NoError(t, err)
	assert.Equal(t, 1, move.CardI)
	assert.Equal(t, 0, move.Row)
	assert.Equal(t, 2, move.Col)
	assert.Greater(t, move.Score, 1000.0)
}

func TestBestMoveFallsBackToWild(t *testing.T) {
	_, g := newTestGame(t)
	stageHand(g, 36) // 11D

	move, err := BestMove(g)
	require.NoError(t, err)
	assert.Equal(t, 36, move.CardI)
	assert.True(t, g.TableState.Board.ValidPlay(CardAt(36), move.Row, move.Col, g.PlayerTeam[g.TableState.ActivePlayer]))
}

func TestBestMoveFallsBackToAntiWild(t *testing.T) {
	_, g := newTestGame(t, withSettings(SettingsUpdate{Board: ptr(LayoutHorizontal)}))
	player := stageHand(g, 10) // 11H
	opponent := Blue
	if g.PlayerTeam[player] == Blue {
		opponent = Green
	}
	board := g.TableState.Board
	board.Tokens[Index(5, 1)] = opponent
	board.Tokens[Index(5, 2)] = opponent
	board.Tokens[Index(5, 3)] = opponent
	board.Tokens[Index(8, 8)] = opponent

	move, err := BestMove(g)
	require.NoError(t, err)
	assert.Equal(t, 10, move.CardI)
	assert.Equal(t, 5, move.Row, "removes the token most valuable to its owner")
}

func TestBestMoveNoLegalMove(t *testing.T) {
	_, g := newTestGame(t)
	stageHand(g, 10, 23) // both anti-wild, nothing to remove

	_, err := BestMove(g)
	assert.True(t, errors.Is(err, ErrNoLegalMove))
}

func TestPlayCPUIsBounded(t *testing.T) {
	e, g := newTestGame(t, withPlayers(), withCPUs(2))
	require.Len(t, g.CPUPlayers, 2)

	// start already let the CPUs move once each
	assert.Len(t, g.TableState.Log, 2)

	played, err := e.PlayCPU(g, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, played)
	assert.Len(t, g.TableState.Log, 5)
}

func TestPlayCPUStopsAtHuman(t *testing.T) {
	e, g := newTestGame(t, withPlayers("alice"), withCPUs(1))
	for g.TableState.ActivePlayer != "alice" {
		_, err := e.PlayCPU(g, 1)
		require.NoError(t, err)
	}

	played, err := e.PlayCPU(g, 10)
	require.NoError(t, err)
	assert.Zero(t, played)
}

func TestCPUGamePlaysToCompletion(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		e, g := newTestGame(t, withSeed(seed), withPlayers(), withCPUs(3))

		for i := 0; i < 1000 && g.State == WaitingToPlay; i++ {
			before := g.TableState.ActivePlayer
			played, err := e.PlayCPU(g, 1)
			require.NoError(t, err)
			require.Equal(t, 1, played)
			if g.State == WaitingToPlay {
				assert.NotEqual(t, before, g.TableState.ActivePlayer, "turn rotates")
			}
			requireConserved(t, g)
			requireReuseCap(t, g.TableState.Board)
		}

		require.Equal(t, GameOver, g.State, "seed %d", seed)
		winner := g.Winner()
		if winner != Draw {
			assert.GreaterOrEqual(t, len(g.TableState.Board.Sequences[winner]), g.Settings.SequencesToWin)
		}
	}
}
