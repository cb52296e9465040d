// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string // debug, info, warn, error
	ListenAddr        string // API listen address (e.g., ":8080")
	MetricsListenAddr string // Metrics listener address (e.g., "localhost:9090")
	DatabasePath      string // SQLite database path
	BootstrapTenant   string // Tenant name created on first run
	BootstrapEmail    string // Owner email created on first run
}

// Load parses configuration from environment variables.
// All configuration options have sensible defaults for ease of deployment.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:          os.Getenv("LOG_LEVEL"),
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
		MetricsListenAddr: os.Getenv("METRICS_LISTEN_ADDR"),
		DatabasePath:      os.Getenv("DATABASE_PATH"),
		BootstrapTenant:   os.Getenv("BOOTSTRAP_TENANT"),
		BootstrapEmail:    os.Getenv("BOOTSTRAP_OWNER_EMAIL"),
	}

	// Set defaults for optional fields
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MetricsListenAddr == "" {
		cfg.MetricsListenAddr = "localhost:9090"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "/data/records.db"
	}
	if cfg.BootstrapTenant == "" {
		cfg.BootstrapTenant = "default"
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if c.BootstrapEmail != "" && !strings.Contains(c.BootstrapEmail, "@") {
		return fmt.Errorf("BOOTSTRAP_OWNER_EMAIL is not a valid address: %q", c.BootstrapEmail)
	}
	return nil
}
