// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default analysis scope when none is configured.
const (
	DefaultLocation = "United States"
	DefaultLanguage = "en"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags or environment variables.
type Config struct {
	// Oracle
	OracleURL    string `json:"oracle_url,omitempty"`     // Base URL of the scoring/suggestion service
	OracleAPIKey string `json:"oracle_api_key,omitempty"` // Bearer token for the oracle
	SiteID       string `json:"site_id,omitempty"`        // Site context forwarded with oracle calls

	// Analysis scope
	Location string `json:"location,omitempty"` // SERP location, e.g. "United States"
	Language string `json:"language,omitempty"` // SERP language code, e.g. "en"

	// Suggestions
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Enables the local Gemini suggestion backend
	GeminiModel  string `json:"gemini_model,omitempty"`   // Model override for the suggestion backend

	// Behavior
	RescoreDelayMS int    `json:"rescore_delay_ms,omitempty"` // Debounce window for automatic rescoring
	UseBrowser     bool   `json:"use_browser,omitempty"`      // Headless browser fallback for draft ingestion
	Verbose        bool   `json:"verbose,omitempty"`          // Print detailed debug information
	DatabaseURL    string `json:"database_url,omitempty"`     // PostgreSQL connection URL for post persistence
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.RescoreDelayMS < 0 {
		return fmt.Errorf("config error: 'rescore_delay_ms' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.OracleURL == "" {
		result.OracleURL = defaults.OracleURL
	}
	if result.OracleAPIKey == "" {
		result.OracleAPIKey = defaults.OracleAPIKey
	}
	if result.SiteID == "" {
		result.SiteID = defaults.SiteID
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Location == "" {
		if defaults.Location != "" {
			result.Location = defaults.Location
		} else {
			result.Location = DefaultLocation
		}
	}
	if result.Language == "" {
		if defaults.Language != "" {
			result.Language = defaults.Language
		} else {
			result.Language = DefaultLanguage
		}
	}

	if result.RescoreDelayMS == 0 {
		result.RescoreDelayMS = defaults.RescoreDelayMS
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
