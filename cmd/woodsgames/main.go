package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Simulate SimulateCmd      `cmd:"" help:"Play CPU-only Sequence-Board games and report outcomes"`
	Board    BoardCmd         `cmd:"" help:"Print a Sequence-Board layout"`
	Deck     DeckCmd          `cmd:"" help:"Print the letter card table"`
	Wordlist WordlistCmd      `cmd:"" help:"Manage word lists in Redis"`
	Define   DefineCmd        `cmd:"" help:"Look up or set a dictionary definition"`
	Session  SessionCmd       `cmd:"" help:"Work with stored game sessions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("woodsgames"),
		kong.Description("Game engines for Sequence-Board, Deck-Mine and Meld"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
