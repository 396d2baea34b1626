package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/alextwoods/woodsgames/internal/simulator"
)

// SimulateCmd plays CPU-only Sequence-Board games.
type SimulateCmd struct {
	Games    int    `default:"100" help:"Number of games to play"`
	Players  int    `default:"2" help:"CPU players per game"`
	Seed     *int64 `help:"RNG seed (random if unset)"`
	Workers  int    `default:"0" help:"Concurrent workers (0 for one per CPU)"`
	MaxTurns int    `default:"1000" help:"Turn cap per game"`
	Show     bool   `help:"Print the final board of the first game"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sim := simulator.New(simulator.Config{
		Games:    c.Games,
		Players:  c.Players,
		Seed:     seed,
		Workers:  workers,
		MaxTurns: c.MaxTurns,
		Settings: chainSettings(cfg),
		Logger:   logger,
	})

	ctx, cancel := signalContext(logger)
	defer cancel()

	fmt.Printf("Simulating %d games with %d CPU players (seed: %d, workers: %d)\n",
		c.Games, c.Players, seed, workers)

	start := time.Now()
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println()
	for _, line := range simulator.Summary(res) {
		fmt.Println(line)
	}
	fmt.Printf("Elapsed: %s (%.1f games/sec)\n", elapsed.Round(time.Millisecond), float64(res.Games)/elapsed.Seconds())

	if c.Show {
		gr, err := sim.Play(seed)
		if err != nil {
			return err
		}
		setupColor()
		fmt.Printf("\nGame 1 (seed %d): %s after %d turns", gr.Seed, gr.Outcome, gr.Turns)
		if gr.Outcome == simulator.Won {
			fmt.Printf(", %s wins", gr.Winner)
		}
		fmt.Println()
		fmt.Println(newBoardStyles().render(gr.Game.TableState.Board))
	}
	return nil
}
