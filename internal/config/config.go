// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the deadlines service.
// Environment variables are parsed from the DL_ prefix.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `envconfig:"LISTEN" default:"0.0.0.0:8080"`

	// DataDir is the directory scanned for *.yml / *.yaml item files.
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// DBDriver selects the settings/favorites store: "sqlite" or "postgres".
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`

	// SQLitePath is the database file used when DBDriver is "sqlite".
	SQLitePath string `envconfig:"SQLITE_PATH" default:"deadlines.db"`

	// PostgresDSN is the connection string used when DBDriver is "postgres".
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// ReloadIntervalMinutes controls how often the data directory is
	// re-read in the background. Zero disables the reloader.
	ReloadIntervalMinutes int `envconfig:"RELOAD_INTERVAL_MINUTES" default:"15"`

	// DefaultTimezone seeds the display timezone before a user picks one.
	DefaultTimezone string `envconfig:"DEFAULT_TIMEZONE" default:"Asia/Shanghai"`

	// LogLevel is the minimum zerolog level ("debug", "info", ...).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("DL", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("DL_SQLITE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DL_POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DL_DB_DRIVER: %s", c.DBDriver)
	}
	if c.ReloadIntervalMinutes < 0 {
		return fmt.Errorf("DL_RELOAD_INTERVAL_MINUTES must not be negative")
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DL_DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	return nil
}
