package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.env")
}

func mustLoad(t *testing.T, paths ...string) *Config {
	t.Helper()
	cfg, err := Load(paths...)
	if err != nil {
		t.Fatalf("Load(%q): %v", paths, err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := mustLoad(t, missing(t))

	want := Config{
		Port:         8080,
		DBPath:       ":memory:",
		FetchTimeout: 15 * time.Second,
		SessionTTL:   2 * time.Hour,
		RateLimit:    120,
		LogLevel:     "info",
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
	if got := cfg.SlogLevel(); got != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want %v", got, slog.LevelInfo)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BUSY_PORT", "9090")
	t.Setenv("BUSY_WEEKDAY_URL", "https://example.com/weekday.csv")
	t.Setenv("BUSY_SESSION_TTL", "30m")
	t.Setenv("BUSY_WARM", "true")
	t.Setenv("BUSY_LOG_LEVEL", "DEBUG")

	cfg := mustLoad(t, missing(t))

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.WeekdayURL != "https://example.com/weekday.csv" {
		t.Errorf("WeekdayURL = %q", cfg.WeekdayURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if !cfg.Warm {
		t.Error("Warm = false, want true")
	}
	if got := cfg.SlogLevel(); got != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want %v", got, slog.LevelDebug)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	// godotenv does not override variables already set; register cleanup
	// for the ones the file introduces.
	t.Setenv("BUSY_DATA_DIR", "")
	os.Unsetenv("BUSY_DATA_DIR")
	t.Setenv("BUSY_RATE_LIMIT", "5")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BUSY_DATA_DIR=/srv/ridership\nBUSY_RATE_LIMIT=99\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := mustLoad(t, path)
	if cfg.DataDir != "/srv/ridership" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/srv/ridership")
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %d, want 5 (environment wins over .env)", cfg.RateLimit)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("BUSY_PORT", "eighty")
	if _, err := Load(missing(t)); err == nil {
		t.Error("Load() with BUSY_PORT=eighty succeeded, want error")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		c := &Config{LogLevel: tt.in}
		if got := c.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
