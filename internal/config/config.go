// Package config loads the woodsgames HCL configuration file.
package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete configuration
type Config struct {
	LogLevel string          `hcl:"log_level,optional"`
	CPUNames []string        `hcl:"cpu_names,optional"`
	Store    *StoreConfig    `hcl:"store,block"`
	Chain    *ChainConfig    `hcl:"chain,block"`
	Ziddler  *ZiddlerConfig  `hcl:"ziddler,block"`
	WordMine *WordMineConfig `hcl:"wordmine,block"`
}

// StoreConfig selects the session store backend
type StoreConfig struct {
	Backend   string `hcl:"backend,optional"`
	Dir       string `hcl:"dir,optional"`
	RedisAddr string `hcl:"redis_addr,optional"`
	RedisDB   int    `hcl:"redis_db,optional"`
}

// ChainConfig holds default Sequence-Board settings
type ChainConfig struct {
	SequencesToWin int    `hcl:"sequences_to_win,optional"`
	SequenceLength int    `hcl:"sequence_length,optional"`
	Board          string `hcl:"board,optional"`
}

// ZiddlerConfig holds default Meld settings
type ZiddlerConfig struct {
	EnableBonusWords *bool  `hcl:"enable_bonus_words,optional"`
	BonusWords       string `hcl:"bonus_words,optional"`
	LongestWordBonus *bool  `hcl:"longest_word_bonus,optional"`
	MostWordsBonus   *bool  `hcl:"most_words_bonus,optional"`
	WordSmithBonus   *bool  `hcl:"word_smith_bonus,optional"`
}

// WordMineConfig holds default Deck-Mine settings
type WordMineConfig struct {
	MaxTurns int `hcl:"max_turns,optional"`
}

// Store backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// DefaultCPUNames is the CPU player name pool.
var DefaultCPUNames = []string{"bender", "data", "chip", "hal", "marvin", "cloud", "bin", "nibble"}

func ptr[T any](v T) *T { return &v }

// Default returns the configuration used when no file is present
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.CPUNames) == 0 {
		c.CPUNames = slices.Clone(DefaultCPUNames)
	}

	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "sessions"
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = "localhost:6379"
	}

	if c.Chain == nil {
		c.Chain = &ChainConfig{}
	}
	if c.Chain.SequencesToWin == 0 {
		c.Chain.SequencesToWin = 2
	}
	if c.Chain.SequenceLength == 0 {
		c.Chain.SequenceLength = 5
	}
	if c.Chain.Board == "" {
		c.Chain.Board = "spiral"
	}

	if c.Ziddler == nil {
		c.Ziddler = &ZiddlerConfig{}
	}
	if c.Ziddler.EnableBonusWords == nil {
		c.Ziddler.EnableBonusWords = ptr(true)
	}
	if c.Ziddler.BonusWords == "" {
		c.Ziddler.BonusWords = "animals"
	}
	if c.Ziddler.LongestWordBonus == nil {
		c.Ziddler.LongestWordBonus = ptr(true)
	}
	if c.Ziddler.MostWordsBonus == nil {
		c.Ziddler.MostWordsBonus = ptr(false)
	}
	if c.Ziddler.WordSmithBonus == nil {
		c.Ziddler.WordSmithBonus = ptr(true)
	}

	if c.WordMine == nil {
		c.WordMine = &WordMineConfig{}
	}
	if c.WordMine.MaxTurns == 0 {
		c.WordMine.MaxTurns = 10
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}
	if c.Store.RedisDB < 0 || c.Store.RedisDB > 15 {
		return fmt.Errorf("redis_db must be between 0 and 15")
	}

	seen := make(map[string]bool, len(c.CPUNames))
	for _, name := range c.CPUNames {
		if name == "" {
			return fmt.Errorf("cpu_names must not contain empty names")
		}
		if seen[name] {
			return fmt.Errorf("cpu name %s listed twice", name)
		}
		seen[name] = true
	}

	if c.Chain.SequenceLength < 3 || c.Chain.SequenceLength > 10 {
		return fmt.Errorf("chain: sequence_length must be between 3 and 10")
	}
	if c.Chain.SequencesToWin < 1 {
		return fmt.Errorf("chain: sequences_to_win must be positive")
	}
	if c.Chain.Board != "spiral" && c.Chain.Board != "horizontal" {
		return fmt.Errorf("chain: unknown board layout %s", c.Chain.Board)
	}

	if c.WordMine.MaxTurns < 1 {
		return fmt.Errorf("wordmine: max_turns must be positive")
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
