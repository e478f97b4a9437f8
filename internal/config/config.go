// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the DSN goes to the OS keychain
// unless it comes from the environment or a flag.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"sqlbridge/cli/internal/xdg"
)

// Environment variables consulted for the DSN, in order.
const (
	EnvDSN         = "SQLBRIDGE_DSN"
	EnvDatabaseURL = "DATABASE_URL"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string   `json:"log_level"`
	LogFormat string   `json:"log_format"`
	DB        DBConfig `json:"db"`
	// MetricsFile, when set, receives the Prometheus text exposition of
	// every run.
	MetricsFile string `json:"metrics_file,omitempty"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	// Profile names the keychain entry holding the DSN.
	Profile string `json:"profile"`
	// Provided records that a DSN was stored with connect.
	Provided bool `json:"provided"`
	// Dialect overrides the dialect derived from the DSN scheme.
	Dialect string `json:"dialect,omitempty"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		DB:        DBConfig{Profile: "default"},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Fields missing
// from the file keep their default values.
func Load() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// EnvDSNValue returns the DSN from the environment, if any.
func EnvDSNValue() (string, bool) {
	for _, k := range []string{EnvDSN, EnvDatabaseURL} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, true
		}
	}
	return "", false
}
