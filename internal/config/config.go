// Package config loads bagctl settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the bagctl settings. Command-line flags override these values.
type Config struct {
	// Seed for Grab; 0 picks a time-based seed.
	Seed          int64  `env:"BAGCTL_SEED" envDefault:"0"`
	LogLevel      string `env:"BAGCTL_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"BAGCTL_LOG_FORMAT" envDefault:"text"`
	TraceExporter string `env:"BAGCTL_TRACE_EXPORTER" envDefault:"none"`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("parse env: BAGCTL_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("parse env: BAGCTL_LOG_LEVEL: %w", err)
	}
	return level, nil
}
