// Package config provides configuration loading and validation for the CLI.
// All settings are enumerated on one struct and validated eagerly at startup;
// nothing reads configuration lazily at call time.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config is the full configuration for an ingestion run. Values come from a
// JSON file, environment variables, and CLI flags, merged in that order.
type Config struct {
	// Source
	ListingURL string `json:"listing_url" validate:"required,url"` // HTTP(S) meeting listing endpoint
	UseBrowser bool   `json:"use_browser,omitempty"`               // Render the listing with a headless browser when it looks script-driven

	// Storage
	DatabaseURL string `json:"database_url" validate:"required"` // PostgreSQL connection URL
	DocumentDir string `json:"document_dir,omitempty"`           // Root directory for stored raw documents

	// Categorization
	APIKey              string `json:"api_key,omitempty"`                                        // Gemini API key; empty disables the model pass
	ModelTimeoutSeconds int    `json:"model_timeout_seconds,omitempty" validate:"gte=0,lte=300"` // Hard timeout per categorization call

	// Batch behavior
	Concurrency int    `json:"concurrency,omitempty" validate:"gte=0,lte=32"` // Concurrent meeting pipelines
	Schedule    string `json:"schedule,omitempty"`                            // Cron expression for the schedule command
	Verbose     bool   `json:"verbose,omitempty"`                             // Print detailed debug information
}

// DefaultDocumentDir is used when no document_dir is configured.
const DefaultDocumentDir = "documents"

// Load reads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills unset fields from environment variables. Secrets are
// expected to arrive this way rather than through the config file.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.ListingURL == "" {
		c.ListingURL = os.Getenv("MEETING_LISTING_URL")
	}
}

// ApplyDefaults fills remaining zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	if c.DocumentDir == "" {
		c.DocumentDir = DefaultDocumentDir
	}
}

// Validate checks the assembled configuration, rejecting missing required
// fields before any work starts.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("config error: field %q failed %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
