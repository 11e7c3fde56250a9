package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port   int    `env:"BUSY_PORT" envDefault:"8080"`
	DBPath string `env:"BUSY_DB_PATH" envDefault:":memory:"`

	// DataDir holds weekday.csv and weekend.csv. Empty means the copies
	// embedded in the binary.
	DataDir      string        `env:"BUSY_DATA_DIR"`
	WeekdayURL   string        `env:"BUSY_WEEKDAY_URL"`
	WeekendURL   string        `env:"BUSY_WEEKEND_URL"`
	FetchTimeout time.Duration `env:"BUSY_FETCH_TIMEOUT" envDefault:"15s"`

	SessionTTL time.Duration `env:"BUSY_SESSION_TTL" envDefault:"2h"`
	RateLimit  int           `env:"BUSY_RATE_LIMIT" envDefault:"120"` // game actions per minute per client
	LogLevel   string        `env:"BUSY_LOG_LEVEL" envDefault:"info"`
	Warm       bool          `env:"BUSY_WARM" envDefault:"false"` // load datasets at startup
}

// Load reads an optional .env file, then configuration from environment
// variables with defaults.
func Load(dotenvPaths ...string) (*Config, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, p := range dotenvPaths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
