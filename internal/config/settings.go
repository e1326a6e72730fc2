package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Settings mirrors Config as it appears in the optional settings file.
// Durations are strings such as "30s"; unset fields keep their defaults.
type Settings struct {
	API struct {
		BaseURL    string `json:"base_url"`
		Key        string `json:"key"`
		Timeout    string `json:"timeout"`
		RetryCount *int   `json:"retry_count"`
		RetryWait  string `json:"retry_wait"`
		UserAgent  string `json:"user_agent"`
	} `json:"api"`
	Storage struct {
		SearchesDir string `json:"searches_dir"`
		OutputDir   string `json:"output_dir"`
		HistoryDB   string `json:"history_db"`
	} `json:"storage"`
	Application struct {
		Timeout  string `json:"timeout"`
		LogLevel string `json:"log_level"`
		Verbose  *bool  `json:"verbose"`
	} `json:"application"`
	Metrics struct {
		TextfilePath string `json:"textfile_path"`
	} `json:"metrics"`
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// ReadSettings reads a json5 settings file and merges <name>.local.<ext>
// over it when present. os.ErrNotExist is returned when neither exists.
func ReadSettings(name string) (Settings, error) {
	var out Settings
	allNotFound := true

	prefix, ext := splitExt(filepath.Base(name))
	localPath := filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		if err := json5.Unmarshal(defaultFile, &out); err != nil {
			return out, fmt.Errorf("parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFile, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override Settings
		if err := json5.Unmarshal(localFile, &override); err != nil {
			return out, fmt.Errorf("parse %s: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}
	return out, nil
}

// Apply copies every field set in s onto c.
func (s Settings) Apply(c *Config) error {
	if s.API.BaseURL != "" {
		c.API.BaseURL = s.API.BaseURL
	}
	if s.API.Key != "" {
		c.API.Key = s.API.Key
	}
	if err := applyDuration(&c.API.Timeout, s.API.Timeout, "api.timeout"); err != nil {
		return err
	}
	if s.API.RetryCount != nil {
		c.API.RetryCount = *s.API.RetryCount
	}
	if err := applyDuration(&c.API.RetryWait, s.API.RetryWait, "api.retry_wait"); err != nil {
		return err
	}
	if s.API.UserAgent != "" {
		c.API.UserAgent = s.API.UserAgent
	}

	if s.Storage.SearchesDir != "" {
		c.Storage.SearchesDir = s.Storage.SearchesDir
	}
	if s.Storage.OutputDir != "" {
		c.Storage.OutputDir = s.Storage.OutputDir
	}
	if s.Storage.HistoryDB != "" {
		c.Storage.HistoryDB = s.Storage.HistoryDB
	}

	if err := applyDuration(&c.Application.Timeout, s.Application.Timeout, "application.timeout"); err != nil {
		return err
	}
	if s.Application.LogLevel != "" {
		c.Application.LogLevel = s.Application.LogLevel
	}
	if s.Application.Verbose != nil {
		c.Application.Verbose = *s.Application.Verbose
	}

	if s.Metrics.TextfilePath != "" {
		c.Metrics.TextfilePath = s.Metrics.TextfilePath
	}
	return nil
}

func applyDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return &ConfigError{Field: field, Message: fmt.Sprintf("invalid duration %q", raw)}
	}
	*dst = d
	return nil
}
