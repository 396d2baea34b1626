package chain

import (
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
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

// WithCPUNames sets the pool CPU player names are drawn from.
func WithCPUNames(names []string) Option {
	return func(e *Engine) { e.cpuNames = append([]string(nil), names...) }
}

// WithDefaultSettings sets the settings new games start with.
func WithDefaultSettings(s Settings) Option {
	return func(e *Engine) { e.defaults = s }
}
