// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the jotlog service. Environment
// variables are parsed from the JOTLOG_ prefix, e.g. JOTLOG_HTTP_PORT,
// JOTLOG_DATA_DIR.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"7777"`

	// DataDir is the root holding project folders, the auxiliary JSON
	// stores and the activity log. Empty means ~/.jotlog.
	DataDir string `envconfig:"DATA_DIR" default:""`

	// DefaultProject is the project folder used when a capture request
	// names none.
	DefaultProject string `envconfig:"DEFAULT_PROJECT" default:"knowledge"`

	// Activity log retention window in days. 0 keeps records forever.
	LogRetentionDays int `envconfig:"LOG_RETENTION_DAYS" default:"14"`

	// Enrichment (grammar/summary/classification) bounded wait.
	EnrichTimeoutSeconds int `envconfig:"ENRICH_TIMEOUT_SECONDS" default:"60"`

	// AI provider. The API key may also live in the settings store
	// under "ai_api_key"; the store value wins when both are set.
	AIBaseURL string `envconfig:"AI_BASE_URL" default:"https://api.anthropic.com"`
	AIModel   string `envconfig:"AI_MODEL" default:"claude-sonnet-4-20250514"`
	AIAPIKey  string `envconfig:"AI_API_KEY" default:""`
}

// New creates a Config by parsing JOTLOG_-prefixed environment
// variables and resolving defaults.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("JOTLOG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.resolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolveDefaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".jotlog")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	return nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// LogRetention returns the retention window as a duration.
func (c *Config) LogRetention() time.Duration {
	return time.Duration(c.LogRetentionDays) * 24 * time.Hour
}

// EnrichTimeout returns the enrichment bounded wait as a duration.
func (c *Config) EnrichTimeout() time.Duration {
	return time.Duration(c.EnrichTimeoutSeconds) * time.Second
}
