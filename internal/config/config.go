// Package config holds runtime settings shared by the commands: search
// depth, random seed, data directory and log level. Values start from
// Default and may be overridden from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/rs/zerolog"
)

// Environment variables read by FromEnv.
const (
	EnvDepth      = "CHESSCORE_DEPTH"
	EnvDifficulty = "CHESSCORE_DIFFICULTY"
	EnvSeed       = "CHESSCORE_SEED"
	EnvThreads    = "CHESSCORE_THREADS"
	EnvDataDir    = "CHESSCORE_DATA_DIR"
	EnvLogLevel   = "CHESSCORE_LOG_LEVEL"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings.
type Config struct {
	SearchDepth int    // plies searched per move
	Seed        uint64 // root move shuffle seed, 0 for time-based
	Threads     int    // root search workers
	DataDir     string // storage location, platform default if empty
	LogLevel    string // zerolog level name
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SearchDepth: engine.DefaultDepth,
		Threads:     1,
		LogLevel:    zerolog.LevelInfoValue,
	}
}

// FromEnv returns Default overridden by any CHESSCORE_* variables that are
// set. CHESSCORE_DIFFICULTY is applied before CHESSCORE_DEPTH, so an
// explicit depth wins.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvDifficulty); ok && v != "" {
		d, err := engine.ParseDifficulty(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvDifficulty, err)
		}
		cfg.SearchDepth = engine.DifficultyDepth[d]
	}
	if v, ok := lookup(EnvDepth); ok && v != "" {
		depth, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvDepth, v)
		}
		cfg.SearchDepth = depth
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSeed, v)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup(EnvThreads); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvThreads, v)
		}
		cfg.Threads = n
	}
	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.SearchDepth < 1 {
		return fmt.Errorf("%w: search depth %d, must be at least 1", ErrInvalidConfig, c.SearchDepth)
	}
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads %d, must be at least 1", ErrInvalidConfig, c.Threads)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Level returns the configured zerolog level, info if it does not parse.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// EngineConfig returns engine settings for these values.
func (c Config) EngineConfig(log zerolog.Logger) engine.Config {
	return engine.Config{
		Depth:   c.SearchDepth,
		Seed:    c.Seed,
		Threads: c.Threads,
		Logger:  log,
	}
}
