// Package config loads service configuration from environment variables.
//
// Env vars are the deployment contract: the original server read PORT and the
// DB_* variables the same way. We use caarlos0/env so defaults and parsing
// live in struct tags instead of a pile of os.Getenv calls in main.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the process needs to start.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// DBPath is the SQLite database file. The parent directory is created
	// at startup if missing. Use ":memory:" for a throwaway database.
	DBPath string `env:"DB_PATH" envDefault:"data/gameclub.db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level name to a slog.Level.
// Unrecognised names fall back to info rather than failing startup.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
