package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/alextwoods/woodsgames/internal/chain"
	"github.com/alextwoods/woodsgames/internal/config"
	"github.com/alextwoods/woodsgames/internal/randutil"
	"github.com/alextwoods/woodsgames/internal/session"
	"github.com/alextwoods/woodsgames/internal/wordmine"
	"github.com/alextwoods/woodsgames/internal/words"
	"github.com/alextwoods/woodsgames/internal/ziddler"
)

// SessionCmd works with stored sessions.
type SessionCmd struct {
	New  SessionNewCmd  `cmd:"" help:"Create a game session"`
	Show SessionShowCmd `cmd:"" help:"Print a session and its game document"`
	List SessionListCmd `cmd:"" help:"List live sessions in a room"`
}

type SessionNewCmd struct {
	Kind    string   `arg:"" enum:"chain,wordmine,ziddler" help:"Game kind (chain, wordmine, ziddler)"`
	Players []string `short:"p" help:"Players to seat"`
	CPUs    int      `name:"cpus" help:"CPU players to seat (chain only)"`
	Room    string   `help:"Room the session belongs to"`
	Start   bool     `help:"Deal the game after seating players"`
	Seed    *int64   `help:"Deterministic RNG seed (optional)"`
}

func (c *SessionNewCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	mgr := session.NewManager(store, session.WithLogger(logger))

	var rng *rand.Rand
	if c.Seed != nil {
		rng = randutil.New(*c.Seed)
	} else {
		var seed int64
		rng, seed = randutil.NewTimeSeeded()
		logger.Debug("Using random seed", "seed", seed)
	}

	var lexicon wordSource = words.NewMemory()
	if cfg.Store.Backend == config.BackendRedis {
		rdb := newRedisClient(cfg)
		defer rdb.Close()
		lexicon = words.NewRedis(rdb)
	}

	state, err := c.build(cfg, logger, rng, lexicon)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := mgr.Create(ctx, session.Kind(c.Kind), c.Room, state)
	if err != nil {
		return err
	}
	if c.Start {
		if err := mgr.Save(ctx, s, state, true); err != nil {
			return err
		}
	}
	fmt.Println(s.ID)
	return nil
}

// wordSource backs bonus lists and definitions for the letter games.
type wordSource interface {
	words.WordLists
	words.Dictionary
}

// build seats the players in a fresh game of the requested kind.
func (c *SessionNewCmd) build(cfg *config.Config, logger *log.Logger, rng *rand.Rand, lists wordSource) (any, error) {
	switch session.Kind(c.Kind) {
	case session.KindChain:
		e := chain.NewEngine(rng,
			chain.WithLogger(logger),
			chain.WithCPUNames(cfg.CPUNames),
			chain.WithDefaultSettings(chainSettings(cfg)))
		game := e.Fresh()
		for _, p := range c.Players {
			if err := e.AddPlayer(game, p); err != nil {
				return nil, err
			}
		}
		for range c.CPUs {
			if _, err := e.AddCPUPlayer(game); err != nil {
				return nil, err
			}
		}
		if c.Start {
			if err := e.Start(game); err != nil {
				return nil, err
			}
		}
		return game, nil

	case session.KindWordMine:
		e := wordmine.NewEngine(rng,
			wordmine.WithLogger(logger),
			wordmine.WithWordLists(lists),
			wordmine.WithDefaultSettings(wordMineSettings(cfg)))
		game := e.Fresh()
		for _, p := range c.Players {
			if err := e.AddPlayer(game, p); err != nil {
				return nil, err
			}
		}
		if c.Start {
			if err := e.Start(game); err != nil {
				return nil, err
			}
		}
		return game, nil

	case session.KindZiddler:
		e := ziddler.NewEngine(rng,
			ziddler.WithLogger(logger),
			ziddler.WithWordLists(lists),
			ziddler.WithDictionary(lists),
			ziddler.WithDefaultSettings(ziddlerSettings(cfg)))
		game := e.Fresh()
		for _, p := range c.Players {
			if err := e.AddPlayer(game, p); err != nil {
				return nil, err
			}
		}
		if c.Start {
			if err := e.Start(game); err != nil {
				return nil, err
			}
		}
		return game, nil
	}
	return nil, fmt.Errorf("unknown game kind %q", c.Kind)
}

func chainSettings(cfg *config.Config) chain.Settings {
	s := chain.DefaultSettings()
	s.SequencesToWin = cfg.Chain.SequencesToWin
	s.SequenceLength = cfg.Chain.SequenceLength
	s.Board = cfg.Chain.Board
	return s
}

func ziddlerSettings(cfg *config.Config) ziddler.Settings {
	z := cfg.Ziddler
	return ziddler.Settings{
		EnableBonusWords: *z.EnableBonusWords,
		BonusWords:       z.BonusWords,
		LongestWordBonus: *z.LongestWordBonus,
		MostWordsBonus:   *z.MostWordsBonus,
		WordSmithBonus:   *z.WordSmithBonus,
	}
}

// wordMineSettings shares the Meld bonus rules.
func wordMineSettings(cfg *config.Config) wordmine.Settings {
	z := ziddlerSettings(cfg)
	return wordmine.Settings{
		MaxTurns:         cfg.WordMine.MaxTurns,
		EnableBonusWords: z.EnableBonusWords,
		BonusWords:       z.BonusWords,
		LongestWordBonus: z.LongestWordBonus,
		MostWordsBonus:   z.MostWordsBonus,
		WordSmithBonus:   z.WordSmithBonus,
	}
}

type SessionShowCmd struct {
	ID string `arg:"" help:"Session ID"`
}

func (c *SessionShowCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	mgr := session.NewManager(store, session.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := mgr.Load(ctx, c.ID)
	if err != nil {
		return err
	}
	game, err := decodeState(s)
	if err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}

	fmt.Printf("%s %s in room %s\n", s.ID, game, s.Room)
	fmt.Printf("created %s, updated %s, expires %s\n",
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339), s.TTL.Format(time.RFC3339))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(game)
}

// decodeState decodes and validates a session's document for its kind.
func decodeState(s *session.Session) (fmt.Stringer, error) {
	switch s.Kind {
	case session.KindChain:
		return chain.Decode(s.State)
	case session.KindWordMine:
		return wordmine.Decode(s.State)
	case session.KindZiddler:
		return ziddler.Decode(s.State)
	}
	return nil, fmt.Errorf("unknown game kind %q", s.Kind)
}

type SessionListCmd struct {
	Kind string `arg:"" enum:"chain,wordmine,ziddler" help:"Game kind"`
	Room string `help:"Room name"`
}

func (c *SessionListCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	mgr := session.NewManager(store, session.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions, err := mgr.ListByRoom(ctx, c.Room, session.Kind(c.Kind))
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%s\t%s\tupdated %s\n", s.ID, s.Room, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
