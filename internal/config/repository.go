package config

import (
	"os"
	"path/filepath"

	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/repository/jsonfile"
	"grant-fetcher/internal/repository/sqlite"
)

// CreateRepository opens the run history database named by the configuration
func CreateRepository(config *Config) (sqlite.Repository, error) {
	dbPath := config.Storage.HistoryDB
	if err := os.MkdirAll(filepath.Dir(dbPath), os.FileMode(config.Storage.DirPermissions)); err != nil {
		return nil, errors.NewDatabaseError("create history directory", err)
	}

	repo, err := sqlite.New(dbPath)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// CreateTestRepository creates an in-memory history for testing
func CreateTestRepository() (sqlite.Repository, error) {
	return sqlite.New(":memory:")
}

// CreateSearchStore returns the saved-search store named by the configuration
func CreateSearchStore(config *Config) *jsonfile.SearchStore {
	return jsonfile.NewSearchStore(config.Storage.SearchesDir, os.FileMode(config.Storage.DirPermissions))
}
