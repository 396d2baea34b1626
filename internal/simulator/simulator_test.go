package simulator

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextwoods/woodsgames/internal/chain"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(Config{Games: 1, Players: 2})
	assert.Equal(t, 1, s.config.Workers)
	assert.Equal(t, DefaultMaxTurns, s.config.MaxTurns)
	assert.Equal(t, chain.DefaultSettings(), s.config.Settings)
	assert.NotNil(t, s.config.Logger)
}

func TestRunTalliesEveryGame(t *testing.T) {
	s := New(Config{Games: 6, Players: 2, Seed: 7, Workers: 3, Logger: quietLogger()})

	res, err := s.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 6, res.Games)

	total := res.Draws + res.Stuck + res.Unfinished
	for _, n := range res.Wins {
		total += n
	}
	assert.Equal(t, res.Games, total)
	assert.Greater(t, res.AverageTurns(), 0.0)
}

func TestRunIsIndependentOfWorkerCount(t *testing.T) {
	run := func(workers int) *Result {
		s := New(Config{Games: 5, Players: 3, Seed: 42, Workers: workers, Logger: quietLogger()})
		res, err := s.Run(t.Context())
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, run(1), run(4))
}

func TestPlayIsDeterministic(t *testing.T) {
	s := New(Config{Games: 1, Players: 2, Logger: quietLogger()})

	a, err := s.Play(3)
	require.NoError(t, err)
	b, err := s.Play(3)
	require.NoError(t, err)

	assert.Equal(t, a.Outcome, b.Outcome)
	assert.Equal(t, a.Winner, b.Winner)
	assert.Equal(t, a.Turns, b.Turns)
	assert.Equal(t, a.Game.TableState.Board.Tokens, b.Game.TableState.Board.Tokens)
}

func TestPlayStopsAtMaxTurns(t *testing.T) {
	s := New(Config{Games: 1, Players: 2, MaxTurns: 3, Logger: quietLogger()})

	gr, err := s.Play(1)
	require.NoError(t, err)
	require.Equal(t, Unfinished, gr.Outcome)
	assert.Equal(t, 3, gr.Turns)
	assert.Equal(t, chain.WaitingToPlay, gr.Game.State)
}

func TestPlayFinishedGameHasWinner(t *testing.T) {
	s := New(Config{Games: 1, Players: 2, Logger: quietLogger()})

	gr, err := s.Play(11)
	require.NoError(t, err)
	switch gr.Outcome {
	case Won:
		assert.Contains(t, chain.TeamOrder[:], gr.Winner)
		assert.GreaterOrEqual(t, len(gr.Game.TableState.Board.Sequences[gr.Winner]), 2)
	case Drawn:
		assert.Equal(t, chain.Draw, gr.Game.Winner())
	case Stuck:
		assert.Equal(t, chain.WaitingToPlay, gr.Game.State)
	default:
		t.Fatalf("unexpected outcome %s", gr.Outcome)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "no games", config: Config{Players: 2}},
		{name: "no players", config: Config{Games: 2}},
		{name: "more players than cpu names", config: Config{Games: 1, Players: len(chain.DefaultCPUNames) + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Logger = quietLogger()
			_, err := New(tt.config).Run(t.Context())
			assert.Error(t, err)
		})
	}
}

func TestSummary(t *testing.T) {
	r := &Result{
		Games: 4,
		Wins:  map[chain.Team]int{chain.Green: 1, chain.Blue: 2},
		Draws: 1,
		Turns: 200,
	}
	assert.Equal(t, []string{
		"Games played: 4",
		"blue wins: 2 (50.0%)",
		"green wins: 1 (25.0%)",
		"Draws: 1",
		"Average turns: 50.0",
	}, Summary(r))
}
