// Package config provides configuration loading and validation for the
// analyzer CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config represents the runtime configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or can be
// overridden via CLI flags and environment variables.
type Config struct {
	// Server
	Port    int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	DataDir string `json:"data_dir,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"`
	OutputDir   string `json:"output_dir,omitempty"`

	// Workers
	Workers   int `json:"workers,omitempty" validate:"gte=0,lte=64"`
	QueueSize int `json:"queue_size,omitempty" validate:"gte=0"`

	// Retry policy for queued jobs
	MaxRetries      int `json:"max_retries,omitempty" validate:"gte=0,lte=10"`
	RetryDelaySecs  int `json:"retry_delay_seconds,omitempty" validate:"gte=0"`
	CallTimeoutSecs int `json:"call_timeout_seconds,omitempty" validate:"gte=0"`

	// LLM
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=azure openai gemini anthropic mock"`
	Model    string `json:"model,omitempty"`

	// Pipeline
	ManifestPath string `json:"manifest,omitempty"`

	// Document extraction
	Pdftotext string `json:"pdftotext,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:           8000,
		DataDir:        "data",
		DatabaseURL:    "findoc.db",
		OutputDir:      "outputs",
		Workers:        2,
		QueueSize:      64,
		MaxRetries:     2,
		RetryDelaySecs: 10,
	}
}

var validate = validator.New()

// Load reads configuration from a JSON file, fills unset fields with
// defaults, applies environment overrides, and validates the result. An
// empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
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

		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		cfg.merge(&fileCfg)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var invalid []string
		for _, fe := range err.(validator.ValidationErrors) {
			invalid = append(invalid, fe.Field())
		}
		return fmt.Errorf("config error: invalid values for %v", invalid)
	}
	if c.ManifestPath != "" {
		if _, err := os.Stat(c.ManifestPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: manifest file not found: %s", c.ManifestPath)
		}
	}
	return nil
}

// merge overlays non-zero fields from other onto c.
func (c *Config) merge(other *Config) {
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.DatabaseURL != "" {
		c.DatabaseURL = other.DatabaseURL
	}
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.QueueSize != 0 {
		c.QueueSize = other.QueueSize
	}
	if other.MaxRetries != 0 {
		c.MaxRetries = other.MaxRetries
	}
	if other.RetryDelaySecs != 0 {
		c.RetryDelaySecs = other.RetryDelaySecs
	}
	if other.CallTimeoutSecs != 0 {
		c.CallTimeoutSecs = other.CallTimeoutSecs
	}
	if other.Provider != "" {
		c.Provider = other.Provider
	}
	if other.Model != "" {
		c.Model = other.Model
	}
	if other.ManifestPath != "" {
		c.ManifestPath = other.ManifestPath
	}
	if other.Pdftotext != "" {
		c.Pdftotext = other.Pdftotext
	}
	if other.Verbose {
		c.Verbose = true
	}
}

// applyEnv overrides selected fields from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("FINDOC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("FINDOC_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("OUTPUTS_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("FINDOC_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FINDOC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}
