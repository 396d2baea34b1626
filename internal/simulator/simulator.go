// Package simulator plays CPU-only Sequence-Board games in bulk and tallies
// the outcomes. Each game is seeded from the run seed and its index, so a
// run replays exactly no matter how many workers share it.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/alextwoods/woodsgames/internal/chain"
	"github.com/alextwoods/woodsgames/internal/randutil"
)

// DefaultMaxTurns caps a single game.
const DefaultMaxTurns = 1000

// Config holds configuration for a simulation run.
type Config struct {
	Games    int
	Players  int
	Seed     int64
	Workers  int
	MaxTurns int
	Settings chain.Settings
	Logger   *log.Logger
}

// Outcome is how a single game finished.
type Outcome string

const (
	Won        Outcome = "won"
	Drawn      Outcome = "drawn"
	Stuck      Outcome = "stuck"
	Unfinished Outcome = "unfinished"
)

// GameResult is the result of one simulated game.
type GameResult struct {
	Seed    int64
	Outcome Outcome
	Winner  chain.Team
	Turns   int
	Game    *chain.Game
}

// Result aggregates a run.
type Result struct {
	Games      int
	Wins       map[chain.Team]int
	Draws      int
	Stuck      int
	Unfinished int
	Turns      int
}

// AverageTurns is the mean number of turns per game.
func (r *Result) AverageTurns() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Turns) / float64(r.Games)
}

// Teams lists the teams with at least one win, in turn order.
func (r *Result) Teams() []chain.Team {
	var out []chain.Team
	for _, t := range chain.TeamOrder {
		if r.Wins[t] > 0 {
			out = append(out, t)
		}
	}
	return out
}

func (r *Result) add(gr GameResult) {
	r.Games++
	r.Turns += gr.Turns
	switch gr.Outcome {
	case Won:
		r.Wins[gr.Winner]++
	case Drawn:
		r.Draws++
	case Stuck:
		r.Stuck++
	case Unfinished:
		r.Unfinished++
	}
}

func (r *Result) merge(o *Result) {
	r.Games += o.Games
	r.Turns += o.Turns
	r.Draws += o.Draws
	r.Stuck += o.Stuck
	r.Unfinished += o.Unfinished
	for t, n := range o.Wins {
		r.Wins[t] += n
	}
}

func newResult() *Result {
	return &Result{Wins: make(map[chain.Team]int)}
}

// Simulator runs batches of CPU games.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = DefaultMaxTurns
	}
	if config.Settings == (chain.Settings{}) {
		config.Settings = chain.DefaultSettings()
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config}
}

// Run plays every game and returns the tally. Games are split across
// workers by index.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}
	if s.config.Players <= 0 {
		return nil, fmt.Errorf("players must be positive, got %d", s.config.Players)
	}
	workers := min(s.config.Workers, s.config.Games)

	g, ctx := errgroup.WithContext(ctx)
	results := make(chan *Result, workers)

	for w := range workers {
		g.Go(func() error {
			res := newResult()
			for i := w; i < s.config.Games; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				gr, err := s.Play(s.config.Seed + int64(i))
				if err != nil {
					return fmt.Errorf("game %d: %w", i, err)
				}
				res.add(gr)
			}
			select {
			case results <- res:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	go func() {
		defer close(results)
		g.Wait()
	}()

	total := newResult()
	for res := range results {
		total.merge(res)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.config.Logger.Info("Simulation complete",
		"games", total.Games,
		"draws", total.Draws,
		"stuck", total.Stuck,
		"avg_turns", fmt.Sprintf("%.1f", total.AverageTurns()))
	return total, nil
}

// Play runs a single CPU game from seed.
func (s *Simulator) Play(seed int64) (GameResult, error) {
	e := chain.NewEngine(randutil.New(seed),
		chain.WithLogger(s.config.Logger),
		chain.WithDefaultSettings(s.config.Settings))
	g := e.Fresh()
	for range s.config.Players {
		if _, err := e.AddCPUPlayer(g); err != nil {
			return GameResult{}, err
		}
	}
	if err := e.Start(g); err != nil {
		return GameResult{}, err
	}

	gr := GameResult{Seed: seed, Game: g}
	for g.State == chain.WaitingToPlay && g.TableState.Turn < s.config.MaxTurns {
		_, err := e.PlayCPU(g, 1)
		if errors.Is(err, chain.ErrNoLegalMove) {
			s.config.Logger.Warn("CPU stuck", "seed", seed, "player", g.ActivePlayer(), "turn", g.TableState.Turn)
			gr.Outcome = Stuck
			gr.Turns = g.TableState.Turn
			return gr, nil
		}
		if err != nil {
			return gr, err
		}
	}
	gr.Turns = g.TableState.Turn

	switch winner := g.Winner(); winner {
	case chain.NoTeam:
		gr.Outcome = Unfinished
	case chain.Draw:
		gr.Outcome = Drawn
	default:
		gr.Outcome = Won
		gr.Winner = winner
	}
	s.config.Logger.Debug("Game finished", "seed", seed, "outcome", gr.Outcome, "winner", gr.Winner, "turns", gr.Turns)
	return gr, nil
}

// Summary renders the tally as report lines.
func Summary(r *Result) []string {
	lines := []string{fmt.Sprintf("Games played: %d", r.Games)}
	for _, t := range r.Teams() {
		pct := float64(r.Wins[t]) / float64(r.Games) * 100
		lines = append(lines, fmt.Sprintf("%s wins: %d (%.1f%%)", t, r.Wins[t], pct))
	}
	lines = append(lines, fmt.Sprintf("Draws: %d", r.Draws))
	if r.Stuck > 0 {
		lines = append(lines, fmt.Sprintf("Stuck: %d", r.Stuck))
	}
	if r.Unfinished > 0 {
		lines = append(lines, fmt.Sprintf("Unfinished: %d", r.Unfinished))
	}
	lines = append(lines, fmt.Sprintf("Average turns: %.1f", r.AverageTurns()))
	return lines
}
