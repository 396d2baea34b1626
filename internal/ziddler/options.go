package ziddler

import (
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/alextwoods/woodsgames/internal/letters"
	"github.com/alextwoods/woodsgames/internal/words"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the clock used to timestamp log entries.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDeck sets the letter card table.
func WithDeck(deck *letters.Deck) Option {
	return func(e *Engine) { e.deck = deck }
}

// WithWordLists sets the word lists consulted for bonus words.
func WithWordLists(lists words.WordLists) Option {
	return func(e *Engine) { e.lists = lists }
}

// WithDictionary sets the dictionary used to define laid down words.
func WithDictionary(dict words.Dictionary) Option {
	return func(e *Engine) { e.dict = dict }
}

// WithDefaultSettings sets the settings new games start with.
func WithDefaultSettings(s Settings) Option {
	return func(e *Engine) { e.defaults = s }
}
