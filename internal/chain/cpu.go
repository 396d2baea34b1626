package chain

import (
	"errors"
	"fmt"
	"slices"
)

// Move is a candidate CPU play.
type Move struct {
	CardI int
	Row   int
	Col   int
	Score float64
}

// BestMove picks the active player's highest scoring play. Ordinary cards
// are preferred; ties go to the last candidate enumerated. Without a
// playable ordinary card a wild jack takes the best empty cell, and failing
// that an anti-wild jack removes the opposing token worth most to its owner.
func BestMove(g *Game) (Move, error) {
	ts := g.TableState
	if ts == nil {
		return Move{}, fmt.Errorf("game has not been dealt")
	}
	player := ts.ActivePlayer
	team := g.PlayerTeam[player]
	board := ts.Board
	seqLen := g.Settings.SequenceLength
	hand := ts.Hands[player]

	var (
		best  Move
		found bool
	)
	consider := func(m Move) {
		if !found || m.Score >= best.Score {
			best = m
			found = true
		}
	}

	for _, cardI := range hand {
		card := CardAt(cardI)
		if card.IsJack() {
			continue
		}
		for _, cell := range board.Locations(card) {
			if board.Tokens[cell] != NoTeam {
				continue
			}
			r, c := RowCol(cell)
			consider(Move{CardI: cardI, Row: r, Col: c, Score: board.ScoreMove(r, c, team, seqLen)})
		}
	}
	if found {
		return best, nil
	}

	for _, cardI := range hand {
		if !CardAt(cardI).IsWild() {
			continue
		}
		for cell := range Cells {
			r, c := RowCol(cell)
			if board.Cells[cell] == FreeSpace || board.Tokens[cell] != NoTeam {
				continue
			}
			consider(Move{CardI: cardI, Row: r, Col: c, Score: board.ScoreMove(r, c, team, seqLen)})
		}
		break
	}
	if found {
		return best, nil
	}

	for _, cardI := range hand {
		card := CardAt(cardI)
		if !card.IsAntiWild() {
			continue
		}
		for cell := range Cells {
			r, c := RowCol(cell)
			if !board.ValidPlay(card, r, c, team) {
				continue
			}
			owner := board.Tokens[cell]
			consider(Move{CardI: cardI, Row: r, Col: c, Score: board.ScoreMove(r, c, owner, seqLen)})
		}
		break
	}
	if found {
		return best, nil
	}
	return Move{}, ErrNoLegalMove
}

// PlayCPU plays consecutive CPU turns while the active player is a CPU, at
// most maxTurns times. maxTurns <= 0 means one pass over the CPU players.
// It returns the number of turns played.
func (e *Engine) PlayCPU(g *Game, maxTurns int) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if maxTurns <= 0 {
		maxTurns = len(g.CPUPlayers)
	}
	played := 0
	for played < maxTurns && e.cpuToMove(g) {
		player := g.TableState.ActivePlayer
		move, err := BestMove(g)
		for attempt := 0; errors.Is(err, ErrNoLegalMove) && attempt < 3; attempt++ {
			if e.exchangeDeadCards(g, player) == 0 {
				break
			}
			move, err = BestMove(g)
		}
		if err != nil {
			return played, fmt.Errorf("cpu %s: %w", player, err)
		}
		if err := e.PlayCard(g, player, move.CardI, move.Row, move.Col); err != nil {
			return played, fmt.Errorf("cpu %s: %w", player, err)
		}
		played++
	}
	return played, nil
}

// exchangeDeadCards swaps every dead card in player's hand.
func (e *Engine) exchangeDeadCards(g *Game, player string) int {
	n := 0
	for _, cardI := range slices.Clone(g.TableState.Hands[player]) {
		if !g.TableState.Board.IsDead(CardAt(cardI)) {
			continue
		}
		if err := e.ExchangeDeadCard(g, player, cardI); err != nil {
			e.logger.Warn("Dead card exchange failed", "player", player, "card", cardI, "error", err)
			continue
		}
		n++
	}
	return n
}

func (e *Engine) cpuToMove(g *Game) bool {
	return g.State == WaitingToPlay && g.TableState != nil &&
		g.TableState.State == WaitingToPlay && g.IsCPU(g.TableState.ActivePlayer)
}

// runCPU lets CPU players move after a deal. A CPU with no legal move is
// left as the active player.
func (e *Engine) runCPU(g *Game) {
	if _, err := e.PlayCPU(g, 0); err != nil {
		if errors.Is(err, ErrNoLegalMove) {
			e.logger.Warn("CPU cannot move", "player", g.TableState.ActivePlayer)
			return
		}
		e.logger.Error("CPU turn failed", "error", err)
	}
}
