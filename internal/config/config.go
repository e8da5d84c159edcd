// Package config loads and persists farmgate configuration from
// ~/.farmgate/config.yaml. The file is the single source of truth; a small
// set of FARMGATE_* environment variables override it for scripting.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all farmgate configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// API access
	API APIConfig `yaml:"api"`

	// Pricing policy applied by the cart aggregator
	Pricing PricingConfig `yaml:"pricing"`

	// Local persisted state
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the HTTP access layer.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // fixed request bound, no retries
}

// PricingConfig configures cart totals. All three values are fixed policy
// constants; the delivery fee is waived above the free-delivery threshold.
type PricingConfig struct {
	DeliveryFlatFee       float64 `yaml:"delivery_flat_fee"`
	FreeDeliveryThreshold float64 `yaml:"free_delivery_threshold"`
	TaxRate               float64 `yaml:"tax_rate"`
}

// StorageConfig configures the local session store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures category file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "farmgate",
		Version: "1.0.0",

		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: "10s",
		},

		Pricing: PricingConfig{
			DeliveryFlatFee:       4.99,
			FreeDeliveryThreshold: 50.0,
			TaxRate:               0.08,
		},

		Storage: StorageConfig{
			DatabasePath: filepath.Join(homeDir(), ".farmgate", "farmgate.db"),
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// DefaultConfigPath returns ~/.farmgate/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".farmgate", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load reads the config file at path, fills unset fields with defaults, and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the config to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// RequestTimeout parses the API timeout, falling back to 10s on bad input.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// applyEnvOverrides applies FARMGATE_* environment variables on top of the
// loaded config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FARMGATE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("FARMGATE_API_TIMEOUT"); v != "" {
		cfg.API.Timeout = v
	}
	if v := os.Getenv("FARMGATE_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("FARMGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FARMGATE_DEBUG"); v == "1" || v == "true" {
		cfg.Logging.DebugMode = true
	}
}
