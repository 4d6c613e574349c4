package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"finance-viewer/internal/logger"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "finance-viewer.yaml"

// Config represents the optional finance-viewer.yaml configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Provider ProviderConfig `yaml:"provider"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

// AppConfig contains application metadata and window geometry.
type AppConfig struct {
	Name   string  `yaml:"name,omitempty"`
	ID     string  `yaml:"id,omitempty"`
	Width  float32 `yaml:"width,omitempty"`
	Height float32 `yaml:"height,omitempty"`
}

// ProviderConfig points the client at the financial data provider.
type ProviderConfig struct {
	BaseURL       string   `yaml:"base_url,omitempty"`
	ClientID      string   `yaml:"client_id,omitempty"`
	Secret        string   `yaml:"secret,omitempty"`
	InstitutionID string   `yaml:"institution_id,omitempty"`
	Products      []string `yaml:"products,omitempty"`
	HistoryDays   int      `yaml:"history_days,omitempty"`
}

// EventsConfig tunes the request state machine.
type EventsConfig struct {
	PollInterval   time.Duration `yaml:"poll_interval,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	Workers        int           `yaml:"workers,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:   "Finance Viewer",
			ID:     "com.financeviewer.app",
			Width:  480,
			Height: 640,
		},
		Provider: ProviderConfig{
			BaseURL:       "https://sandbox.plaid.com",
			InstitutionID: "ins_109508",
			Products:      []string{"transactions"},
			HistoryDays:   30,
		},
		Events: EventsConfig{
			PollInterval:   time.Second,
			RequestTimeout: 30 * time.Second,
			Workers:        4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment. An empty path reads DefaultFile if present; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("FINVIEW_CLIENT_ID")); v != "" {
		c.Provider.ClientID = v
	}
	if v := strings.TrimSpace(getenv("FINVIEW_SECRET")); v != "" {
		c.Provider.Secret = v
	}
	if v := strings.TrimSpace(getenv("FINVIEW_BASE_URL")); v != "" {
		c.Provider.BaseURL = v
	}

	switch level := strings.TrimSpace(getenv("LOG_LEVEL")); {
	case level != "":
		c.Log.Level = level
	case getenv("DEBUG") == "1":
		c.Log.Level = "debug"
	}

	if getenv("FINVIEW_JSON_LOGS") == "true" {
		c.Log.JSON = true
	}
}

// Validate checks values that would otherwise fail far from their source.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Provider.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewValidationError("provider.base_url", c.Provider.BaseURL, "must be an absolute URL")
	}
	if c.Provider.HistoryDays <= 0 {
		return NewValidationError("provider.history_days", c.Provider.HistoryDays, "must be positive")
	}
	if c.Events.PollInterval <= 0 {
		return NewValidationError("events.poll_interval", c.Events.PollInterval, "must be positive")
	}
	if c.Events.RequestTimeout < 0 {
		return NewValidationError("events.request_timeout", c.Events.RequestTimeout, "must not be negative")
	}
	if c.Events.Workers < 1 {
		return NewValidationError("events.workers", c.Events.Workers, "need at least one worker")
	}
	if c.App.Width <= 0 || c.App.Height <= 0 {
		return NewValidationError("app.width/height", fmt.Sprintf("%vx%v", c.App.Width, c.App.Height), "window size must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return NewValidationError("log.level", c.Log.Level, "unknown level")
	}
	return nil
}

// LogLevel returns the configured level for the logger package.
func (c *Config) LogLevel() logger.LogLevel {
	return logger.ParseLevel(c.Log.Level)
}

// HasCredentials reports whether provider credentials are configured.
func (c *Config) HasCredentials() bool {
	return c.Provider.ClientID != "" && c.Provider.Secret != ""
}

// ValidationError describes a configuration value that was rejected.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for '%s' with value '%v': %s",
		ve.Field, ve.Value, ve.Message)
}
