package config

import (
	stderrors "errors"
	"os"
	"strconv"
	"time"

	"grant-fetcher/internal/errors"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the settings file (and its .local sibling)
// 3. Override with environment variables
// 4. Override with command line flags (see LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	settingsPath := l.config.Application.Settings
	if p := os.Getenv("GF_SETTINGS"); p != "" {
		settingsPath = p
	} else if home := os.Getenv("GF_HOME"); home != "" {
		l.config.rebaseHome(home)
		settingsPath = l.config.Application.Settings
	}

	settings, err := ReadSettings(settingsPath)
	switch {
	case err == nil:
		if err := settings.Apply(l.config); err != nil {
			return nil, errors.NewConfigError("invalid settings file "+settingsPath, err)
		}
	case stderrors.Is(err, os.ErrNotExist):
	default:
		return nil, errors.NewConfigError("could not read settings file "+settingsPath, err)
	}
	l.config.Application.Settings = settingsPath

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, errors.NewConfigError("could not read environment", err)
	}

	if err := l.config.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// API overrides
	BaseURL    *string
	APITimeout *time.Duration
	RetryCount *int

	// Storage overrides
	SearchesDir *string
	OutputDir   *string
	HistoryDB   *string

	// Application overrides
	Timeout  *time.Duration
	LogLevel *string
	Verbose  *bool

	// Metrics overrides
	MetricsFile *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	// API overrides
	if overrides.BaseURL != nil {
		config.API.BaseURL = *overrides.BaseURL
	}
	if overrides.APITimeout != nil {
		config.API.Timeout = *overrides.APITimeout
	}
	if overrides.RetryCount != nil {
		config.API.RetryCount = *overrides.RetryCount
	}

	// Storage overrides
	if overrides.SearchesDir != nil {
		config.Storage.SearchesDir = *overrides.SearchesDir
	}
	if overrides.OutputDir != nil {
		config.Storage.OutputDir = *overrides.OutputDir
	}
	if overrides.HistoryDB != nil {
		config.Storage.HistoryDB = *overrides.HistoryDB
	}

	// Application overrides
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.LogLevel != nil {
		config.Application.LogLevel = *overrides.LogLevel
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}

	// Metrics overrides
	if overrides.MetricsFile != nil {
		config.Metrics.TextfilePath = *overrides.MetricsFile
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
