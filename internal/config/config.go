// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the runtime settings of a Klondike host, read from the
// environment (optionally seeded from .env files).
type Config struct {
	Level int    // KLONDIKE_LEVEL: difficulty 1–100, 0 = plain shuffle.
	Seed  uint64 // KLONDIKE_SEED: layout seed, 0 = unseeded.

	AutoSolveInterval time.Duration // KLONDIKE_AUTOSOLVE_INTERVAL: delay between solver ticks.

	SolverMaxStuck       int // KLONDIKE_SOLVER_MAX_STUCK
	SolverBridgeAfter    int // KLONDIKE_SOLVER_BRIDGE_AFTER
	SolverMaxRetries     int // KLONDIKE_SOLVER_MAX_RETRIES
	SolverMaxStockCycles int // KLONDIKE_SOLVER_MAX_STOCK_CYCLES
	SolverMaxSteps       int // KLONDIKE_SOLVER_MAX_STEPS

	BlockRecycleOnAce bool // KLONDIKE_BLOCK_RECYCLE_ON_ACE
	FoundationPoints  int  // KLONDIKE_FOUNDATION_POINTS

	LogLevel logrus.Level // LOG_LEVEL

	RedisAddr      string // REDIS_ADDR: empty disables the action historian.
	HistoryChannel string // KLONDIKE_HISTORY_CHANNEL
}

// Default returns the built-in settings.
func Default() Config {
	rules := engine.DefaultHouseRules()
	solver := engine.DefaultSolverConfig()
	return Config{
		AutoSolveInterval:    120 * time.Millisecond,
		SolverMaxStuck:       solver.MaxStuck,
		SolverBridgeAfter:    solver.BridgeAfter,
		SolverMaxRetries:     solver.MaxRetries,
		SolverMaxStockCycles: solver.MaxStockCycles,
		SolverMaxSteps:       solver.MaxSteps,
		BlockRecycleOnAce:    rules.BlockRecycleOnAce,
		FoundationPoints:     rules.FoundationPoints,
		LogLevel:             logrus.InfoLevel,
		HistoryChannel:       "klondike:actions",
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, then builds a Config from it. A missing default .env
// is not an error; a missing named file is.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	if cfg.Level, err = intVar("KLONDIKE_LEVEL", cfg.Level); err != nil {
		return Config{}, err
	}
	if cfg.Level < 0 || cfg.Level > engine.MaxLevel {
		return Config{}, fmt.Errorf("KLONDIKE_LEVEL: %d outside 0..%d", cfg.Level, engine.MaxLevel)
	}
	if v, ok := os.LookupEnv("KLONDIKE_SEED"); ok && v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("KLONDIKE_SEED: %w", err)
		}
	}
	if v, ok := os.LookupEnv("KLONDIKE_AUTOSOLVE_INTERVAL"); ok && v != "" {
		if cfg.AutoSolveInterval, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("KLONDIKE_AUTOSOLVE_INTERVAL: %w", err)
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"KLONDIKE_SOLVER_MAX_STUCK", &cfg.SolverMaxStuck},
		{"KLONDIKE_SOLVER_BRIDGE_AFTER", &cfg.SolverBridgeAfter},
		{"KLONDIKE_SOLVER_MAX_RETRIES", &cfg.SolverMaxRetries},
		{"KLONDIKE_SOLVER_MAX_STOCK_CYCLES", &cfg.SolverMaxStockCycles},
		{"KLONDIKE_SOLVER_MAX_STEPS", &cfg.SolverMaxSteps},
		{"KLONDIKE_FOUNDATION_POINTS", &cfg.FoundationPoints},
	}
	for _, iv := range ints {
		if *iv.dst, err = intVar(iv.name, *iv.dst); err != nil {
			return Config{}, err
		}
		if *iv.dst < 0 {
			return Config{}, fmt.Errorf("%s: must not be negative", iv.name)
		}
	}

	if v, ok := os.LookupEnv("KLONDIKE_BLOCK_RECYCLE_ON_ACE"); ok && v != "" {
		if cfg.BlockRecycleOnAce, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("KLONDIKE_BLOCK_RECYCLE_ON_ACE: %w", err)
		}
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		if cfg.LogLevel, err = logrus.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if v := os.Getenv("KLONDIKE_HISTORY_CHANNEL"); v != "" {
		cfg.HistoryChannel = v
	}
	return cfg, nil
}

func intVar(name string, def int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// HouseRules maps the settings onto engine rules.
func (c Config) HouseRules() engine.HouseRules {
	return engine.HouseRules{
		Level:             c.Level,
		FoundationPoints:  c.FoundationPoints,
		BlockRecycleOnAce: c.BlockRecycleOnAce,
	}
}

// SolverConfig maps the settings onto solver limits.
func (c Config) SolverConfig() engine.SolverConfig {
	return engine.SolverConfig{
		MaxStuck:       c.SolverMaxStuck,
		BridgeAfter:    c.SolverBridgeAfter,
		MaxRetries:     c.SolverMaxRetries,
		MaxStockCycles: c.SolverMaxStockCycles,
		MaxSteps:       c.SolverMaxSteps,
	}
}

// Logger returns a logrus logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(c.LogLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}
