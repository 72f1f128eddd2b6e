// Package config loads the engine configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/logging"
)

// Config is the full configuration.
type Config struct {
	Rules  RulesConfig  `json:"rules" yaml:"rules"`
	Search SearchConfig `json:"search" yaml:"search"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// RulesConfig configures the rules engine.
type RulesConfig struct {
	TurnCap int `json:"turn_cap" yaml:"turn_cap"`
}

// SearchConfig configures the decision policy.
type SearchConfig struct {
	Rollouts            int     `json:"rollouts" yaml:"rollouts"`
	ExplorationConstant float64 `json:"exploration_constant" yaml:"exploration_constant"`
	OrderChildren       bool    `json:"order_children" yaml:"order_children"`
	Seed                int64   `json:"seed" yaml:"seed"`
	// RandomUntilTurn is the last turn played with a random move.
	RandomUntilTurn int `json:"random_until_turn" yaml:"random_until_turn"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	SessionTTL      time.Duration `json:"session_ttl" yaml:"session_ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rules: RulesConfig{TurnCap: game.DefaultTurnCap},
		Search: SearchConfig{
			Rollouts:            200,
			ExplorationConstant: 1.414,
			RandomUntilTurn:     7,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			SessionTTL:      time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: logging.FormatText},
	}
}

// Load reads path over the defaults, applies TETRESS_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"TETRESS_TURN_CAP":          &c.Rules.TurnCap,
		"TETRESS_ROLLOUTS":          &c.Search.Rollouts,
		"TETRESS_RANDOM_UNTIL_TURN": &c.Search.RandomUntilTurn,
	}
	for k, p := range ints {
		if v, ok := lookup(k); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*p = i
		}
	}
	if v, ok := lookup("TETRESS_SEED"); ok {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TETRESS_SEED: %w", err)
		}
		c.Search.Seed = i
	}
	if v, ok := lookup("TETRESS_EXPLORATION_CONSTANT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TETRESS_EXPLORATION_CONSTANT: %w", err)
		}
		c.Search.ExplorationConstant = f
	}
	if v, ok := lookup("TETRESS_ORDER_CHILDREN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TETRESS_ORDER_CHILDREN: %w", err)
		}
		c.Search.OrderChildren = b
	}
	durations := map[string]*time.Duration{
		"TETRESS_SESSION_TTL":      &c.Server.SessionTTL,
		"TETRESS_CLEANUP_INTERVAL": &c.Server.CleanupInterval,
	}
	for k, p := range durations {
		if v, ok := lookup(k); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*p = d
		}
	}
	if v, ok := lookup("TETRESS_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("TETRESS_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("TETRESS_LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Rules.TurnCap <= game.OpeningTurns {
		errs = append(errs, fmt.Errorf("rules.turn_cap must exceed %d, got %d", game.OpeningTurns, c.Rules.TurnCap))
	}
	if c.Search.Rollouts < 1 {
		errs = append(errs, fmt.Errorf("search.rollouts must be positive, got %d", c.Search.Rollouts))
	}
	if c.Search.ExplorationConstant <= 0 {
		errs = append(errs, fmt.Errorf("search.exploration_constant must be positive, got %v", c.Search.ExplorationConstant))
	}
	if c.Search.RandomUntilTurn < 0 {
		errs = append(errs, fmt.Errorf("search.random_until_turn must not be negative, got %d", c.Search.RandomUntilTurn))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	if c.Server.CleanupInterval <= 0 {
		errs = append(errs, errors.New("server.cleanup_interval must be positive"))
	}
	if err := c.Logging().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logging converts the log section to a logging.Config.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
