package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"grant-fetcher/internal/errors"
)

// APIKeyEnv names the environment variable holding the grants API key.
const APIKeyEnv = "CANDID_API_KEY"

// Config holds all configuration options for the grant fetcher
type Config struct {
	API         APIConfig
	Storage     StorageConfig
	Application ApplicationConfig
	Metrics     MetricsConfig
}

// APIConfig holds settings for the remote grants API
type APIConfig struct {
	BaseURL    string        `env:"GF_BASE_URL"`
	Key        string        `env:"CANDID_API_KEY"`
	Timeout    time.Duration `env:"GF_TIMEOUT"`
	RetryCount int           `env:"GF_RETRY_COUNT"`
	RetryWait  time.Duration `env:"GF_RETRY_WAIT"`
	UserAgent  string        `env:"GF_USER_AGENT"`
}

// StorageConfig holds local file locations
type StorageConfig struct {
	HomeDir        string `env:"GF_HOME"`
	SearchesDir    string `env:"GF_SEARCHES_DIR"`
	OutputDir      string `env:"GF_OUTPUT_DIR"`
	HistoryDB      string `env:"GF_HISTORY_DB"`
	DirPermissions uint32 `env:"GF_DIR_PERMISSIONS"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout  time.Duration `env:"GF_APP_TIMEOUT"`
	LogLevel string        `env:"GF_LOG_LEVEL"`
	Verbose  bool          `env:"GF_VERBOSE"`
	Settings string        `env:"GF_SETTINGS"`
}

// MetricsConfig controls the optional prometheus textfile output
type MetricsConfig struct {
	TextfilePath string `env:"GF_METRICS_FILE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	gfDir := filepath.Join(homeDir, ".gf")

	return &Config{
		API: APIConfig{
			BaseURL:    "https://api.candid.org",
			Timeout:    30 * time.Second,
			RetryCount: 2,
			RetryWait:  500 * time.Millisecond,
			UserAgent:  "grant-fetcher",
		},
		Storage: StorageConfig{
			HomeDir:        gfDir,
			SearchesDir:    filepath.Join(gfDir, "saved_searches"),
			OutputDir:      ".",
			HistoryDB:      filepath.Join(gfDir, "gf.db"),
			DirPermissions: 0755,
		},
		Application: ApplicationConfig{
			Timeout:  5 * time.Minute,
			LogLevel: "warn",
			Settings: filepath.Join(gfDir, "settings.json5"),
		},
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// API configuration
	if url := os.Getenv("GF_BASE_URL"); url != "" {
		c.API.BaseURL = url
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		c.API.Key = key
	}
	if timeout := os.Getenv("GF_TIMEOUT"); timeout != "" {
		c.API.Timeout = ParseDurationWithFallback(timeout, c.API.Timeout)
	}
	if retries := os.Getenv("GF_RETRY_COUNT"); retries != "" {
		c.API.RetryCount = ParseIntWithFallback(retries, c.API.RetryCount)
	}
	if wait := os.Getenv("GF_RETRY_WAIT"); wait != "" {
		c.API.RetryWait = ParseDurationWithFallback(wait, c.API.RetryWait)
	}
	if agent := os.Getenv("GF_USER_AGENT"); agent != "" {
		c.API.UserAgent = agent
	}

	// Storage configuration
	if home := os.Getenv("GF_HOME"); home != "" {
		c.rebaseHome(home)
	}
	if dir := os.Getenv("GF_SEARCHES_DIR"); dir != "" {
		c.Storage.SearchesDir = dir
	}
	if dir := os.Getenv("GF_OUTPUT_DIR"); dir != "" {
		c.Storage.OutputDir = dir
	}
	if db := os.Getenv("GF_HISTORY_DB"); db != "" {
		c.Storage.HistoryDB = db
	}
	if perms := os.Getenv("GF_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Application configuration
	if timeout := os.Getenv("GF_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if level := os.Getenv("GF_LOG_LEVEL"); level != "" {
		c.Application.LogLevel = level
	}
	if verbose := os.Getenv("GF_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Metrics configuration
	if path := os.Getenv("GF_METRICS_FILE"); path != "" {
		c.Metrics.TextfilePath = path
	}

	return nil
}

// rebaseHome moves every default path that lives under the current home
// directory to newHome. Paths that were set explicitly are left alone.
func (c *Config) rebaseHome(newHome string) {
	old := c.Storage.HomeDir
	rebase := func(p string) string {
		if rel, err := filepath.Rel(old, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join(newHome, rel)
		}
		return p
	}
	c.Storage.SearchesDir = rebase(c.Storage.SearchesDir)
	c.Storage.HistoryDB = rebase(c.Storage.HistoryDB)
	c.Application.Settings = rebase(c.Application.Settings)
	c.Storage.HomeDir = newHome
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate API configuration
	if c.API.BaseURL == "" {
		return &ConfigError{Field: "api.base_url", Message: "base URL cannot be empty"}
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return &ConfigError{Field: "api.base_url", Message: "base URL must start with http:// or https://"}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "request timeout must be positive"}
	}
	if c.API.RetryCount < 0 || c.API.RetryCount > 5 {
		return &ConfigError{Field: "api.retry_count", Message: "retry count must be between 0 and 5"}
	}
	if c.API.RetryWait < 0 {
		return &ConfigError{Field: "api.retry_wait", Message: "retry wait cannot be negative"}
	}

	// Validate storage configuration
	if c.Storage.SearchesDir == "" {
		return &ConfigError{Field: "storage.searches_dir", Message: "saved searches directory cannot be empty"}
	}
	if c.Storage.OutputDir == "" {
		return &ConfigError{Field: "storage.output_dir", Message: "output directory cannot be empty"}
	}
	if c.Storage.HistoryDB == "" {
		return &ConfigError{Field: "storage.history_db", Message: "history database path cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// RequireAPIKey returns a config error when no API key has been supplied.
// Commands that talk to the grants API call this before building a client.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return errors.NewConfigError(APIKeyEnv+" is not set", nil).WithContext("env", APIKeyEnv)
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
