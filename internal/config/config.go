package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all diffcalc configuration.
type Config struct {
	Engine  EngineConfig
	Sample  SampleConfig
	Logging LogConfig
}

// EngineConfig selects the derivative shape used for the evaluation.
type EngineConfig struct {
	Parameters int `envconfig:"DIFF_PARAMETERS" default:"2"`
	Order      int `envconfig:"DIFF_ORDER" default:"2"`
}

// SampleConfig describes the evaluation grid.
type SampleConfig struct {
	From   float64 `envconfig:"SAMPLE_FROM" default:"0.5"`
	To     float64 `envconfig:"SAMPLE_TO" default:"4.0"`
	Points int     `envconfig:"SAMPLE_POINTS" default:"8"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Parameters: 2,
			Order:      2,
		},
		Sample: SampleConfig{
			From:   0.5,
			To:     4.0,
			Points: 8,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	if c.Engine.Parameters < 0 {
		return fmt.Errorf("invalid config: negative parameter count %d", c.Engine.Parameters)
	}
	if c.Engine.Order < 0 {
		return fmt.Errorf("invalid config: negative derivation order %d", c.Engine.Order)
	}
	if c.Sample.Points < 1 {
		return fmt.Errorf("invalid config: sample points %d, need at least 1", c.Sample.Points)
	}
	return nil
}
