package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alextwoods/woodsgames/internal/words"
)

// WordlistCmd manages named word lists.
type WordlistCmd struct {
	Import WordlistImportCmd `cmd:"" help:"Import a word list file (one word per line)"`
	Size   WordlistSizeCmd   `cmd:"" help:"Print the number of words in a list"`
}

type WordlistImportCmd struct {
	List string `required:"" help:"List name, e.g. animals"`
	File string `arg:"" type:"existingfile" help:"Word list file"`
}

func (c *WordlistImportCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	list, err := words.ReadWords(f)
	if err != nil {
		return err
	}

	rdb := newRedisClient(cfg)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	added, err := words.NewRedis(rdb).Import(ctx, c.List, list)
	if err != nil {
		return err
	}
	logger.Info("Imported word list", "list", c.List, "read", len(list), "added", added)
	fmt.Printf("%s: %d words read, %d new\n", c.List, len(list), added)
	return nil
}

type WordlistSizeCmd struct {
	List string `arg:"" help:"List name"`
}

func (c *WordlistSizeCmd) Run(g *Globals) error {
	cfg, _, err := g.setup()
	if err != nil {
		return err
	}
	rdb := newRedisClient(cfg)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := words.NewRedis(rdb).Size(ctx, c.List)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d words\n", c.List, n)
	return nil
}

// DefineCmd looks up a word, or stores a definition with --set.
type DefineCmd struct {
	Word string `arg:"" help:"Word to look up"`
	Set  string `help:"Store this definition instead of looking the word up"`
}

func (c *DefineCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	rdb := newRedisClient(cfg)
	defer rdb.Close()
	dict := words.NewRedis(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.Set != "" {
		if err := dict.SetDefinition(ctx, c.Word, c.Set); err != nil {
			return err
		}
		logger.Info("Stored definition", "word", words.Normalize(c.Word))
		return nil
	}

	def, ok, err := dict.Define(ctx, c.Word)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no definition for %q", c.Word)
	}
	fmt.Printf("%s: %s\n", words.Normalize(c.Word), def)
	return nil
}
