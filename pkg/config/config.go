// Package config provides configuration loading, validation, and the static
// model catalog for the codeassist service.
//
// Configuration is split in two:
//
//   - Service config: user-editable settings (listen address, defaults,
//     generation bounds, retry, web UI auth) loaded from a YAML file over
//     DefaultConfig and validated before use.
//   - Constants: the model catalog and provider inference rules, hardcoded
//     in models.go. These are algorithm data, not user settings.
//
// Secrets (API keys) are handled separately in secrets.go and never appear
// in the YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Generation bounds mirror the original front-end sliders: temperature
// 0.0-1.0 defaulting to 0.1, max tokens 100-5000 defaulting to 500.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 500
	MinTemperature     = 0.0
	MaxTemperature     = 1.0
	MinMaxTokens       = 100
	MaxMaxTokens       = 5000
)

// GenerationConfig carries per-request generation defaults and the bounds
// enforced at the presentation boundary.
type GenerationConfig struct {
	DefaultTemperature float32 `yaml:"default_temperature"`
	DefaultMaxTokens   int     `yaml:"default_max_tokens"`
}

// RetryConfig defines retry behavior for the client middleware chain.
type RetryConfig struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	Jitter        bool          `yaml:"jitter"`
}

// WebUIConfig controls the HTTP front-end.
type WebUIConfig struct {
	// Auth enables HTTP basic auth on everything except /healthz and
	// /metrics. The password comes from the secrets store or the
	// CODEASSIST_PASSWORD environment variable.
	Auth bool `yaml:"auth"`
}

// Config is the service configuration. Loaded once at startup and treated
// as read-only afterwards; each request copies the values it needs.
type Config struct {
	ListenAddr    string           `yaml:"listen_addr"`
	DefaultModel  string           `yaml:"default_model"`
	PrometheusURL string           `yaml:"prometheus_url"`
	Generation    GenerationConfig `yaml:"generation"`
	Retry         RetryConfig      `yaml:"retry"`
	WebUI         WebUIConfig      `yaml:"webui"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   ":8085",
		DefaultModel: "gpt-3.5-turbo",
		Generation: GenerationConfig{
			DefaultTemperature: DefaultTemperature,
			DefaultMaxTokens:   DefaultMaxTokens,
		},
		Retry: RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2.0,
			Jitter:        true,
		},
		WebUI: WebUIConfig{Auth: false},
	}
}

// LoadFromFile overlays the YAML file at path onto DefaultConfig and
// validates the result. A missing file is not an error: the defaults are
// returned as-is so the service runs without any config file present.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model must not be empty")
	}
	if _, err := GetModelProvider(c.DefaultModel); err != nil {
		return fmt.Errorf("default_model: %w", err)
	}
	if err := ValidateGeneration(c.Generation.DefaultTemperature, c.Generation.DefaultMaxTokens); err != nil {
		return fmt.Errorf("generation defaults: %w", err)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BackoffFactor < 1.0 {
		return fmt.Errorf("retry.backoff_factor must be at least 1.0, got %g", c.Retry.BackoffFactor)
	}
	return nil
}

// ValidateGeneration range-checks the pass-through generation parameters.
// This is the presentation-boundary sanity check: the core treats the values
// as opaque.
func ValidateGeneration(temperature float32, maxTokens int) error {
	if temperature < MinTemperature || temperature > MaxTemperature {
		return fmt.Errorf("temperature must be in [%g, %g], got %g", MinTemperature, MaxTemperature, temperature)
	}
	if maxTokens < MinMaxTokens || maxTokens > MaxMaxTokens {
		return fmt.Errorf("max_tokens must be in [%d, %d], got %d", MinMaxTokens, MaxMaxTokens, maxTokens)
	}
	return nil
}
