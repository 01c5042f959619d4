// Package config reads the trainer's configuration from the
// environment, prefix VOKABELTRAINER.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

const envPrefix = "VOKABELTRAINER"

// Config holds the runtime configuration. Everything has a default; the
// trainer runs without any environment set.
type Config struct {
	// DataDir is where the JSON documents (or the SQLite file) live.
	DataDir string `envconfig:"DATA_DIR" default:"."`
	// Backend selects the store implementation: json or sqlite.
	Backend string `envconfig:"BACKEND" default:"json"`
	// DBPath is the SQLite file name inside DataDir.
	DBPath string `envconfig:"DB_PATH" default:"vokabeltrainer.db"`
	// LogFile enables JSON logging to the given file when set.
	LogFile string `envconfig:"LOG_FILE"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	if c.Backend != BackendJSON && c.Backend != BackendSQLite {
		return Config{}, fmt.Errorf("unknown backend %q (supported: %s, %s)", c.Backend, BackendJSON, BackendSQLite)
	}
	return c, nil
}
