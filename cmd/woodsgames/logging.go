package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"

	"github.com/alextwoods/woodsgames/internal/config"
	"github.com/alextwoods/woodsgames/internal/session"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config string `short:"c" default:"woodsgames.hcl" help:"Path to the HCL config file" type:"path"`
	Debug  bool   `help:"Enable debug logging"`
}

// setup loads the config file and builds the logger it asks for.
func (g *Globals) setup() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", g.Config, err)
	}

	level := cfg.Level()
	if g.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	logger.Debug("Loaded config", "path", g.Config, "store", cfg.Store.Backend)
	return cfg, logger, nil
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Store.RedisAddr,
		DB:   cfg.Store.RedisDB,
	})
}

// openStore returns the configured session store and a func releasing it.
func openStore(cfg *config.Config, logger *log.Logger) (session.Store, func(), error) {
	clock := quartz.NewReal()
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(clock), func() {}, nil
	case config.BackendFile:
		store, err := session.NewFileStore(cfg.Store.Dir, clock)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendRedis:
		rdb := newRedisClient(cfg)
		return session.NewRedisStore(rdb, clock, logger), func() { rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("invalid store backend: %s", cfg.Store.Backend)
	}
}

// signalContext is cancelled on interrupt.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
