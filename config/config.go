package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	App     AppConfig
	Journal JournalConfig
}

// AppConfig covers process-wide settings.
type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// JournalConfig covers journal storage and reporting defaults.
type JournalConfig struct {
	DBPath            string  `envconfig:"DB_PATH" default:"./data/journal.db"`
	DataDir           string  `envconfig:"DATA_DIR" default:"./data"`
	DefaultWindowDays int     `envconfig:"DEFAULT_WINDOW_DAYS" default:"30"`
	BaseCurrency      string  `envconfig:"BASE_CURRENCY" default:"USD"`
	StartingBalance   float64 `envconfig:"STARTING_BALANCE" default:"0"`
}

// Load reads configuration from environment variables (.env file supported).
func Load() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	var errs []string
	if cfg.Journal.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	if cfg.Journal.DataDir == "" {
		errs = append(errs, "DATA_DIR must be set")
	}
	if cfg.Journal.DefaultWindowDays < 1 {
		errs = append(errs, "DEFAULT_WINDOW_DAYS must be at least 1")
	}
	if cfg.Journal.BaseCurrency == "" {
		errs = append(errs, "BASE_CURRENCY must be set")
	}
	if cfg.Journal.StartingBalance < 0 {
		errs = append(errs, "STARTING_BALANCE cannot be negative")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}
