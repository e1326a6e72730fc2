package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"grant-fetcher/internal/config"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackendConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Storage.HomeDir = dir
	cfg.Storage.SearchesDir = filepath.Join(dir, "saved_searches")
	cfg.Storage.OutputDir = filepath.Join(dir, "out")
	cfg.Storage.HistoryDB = filepath.Join(dir, "gf.db")
	cfg.API.BaseURL = "http://127.0.0.1:1"
	return cfg
}

func TestDefaultBackend_SearchesOnly(t *testing.T) {
	cfg := testBackendConfig(t)
	backend := NewDefaultBackend()
	ctx := context.Background()

	businessAPI, err := backend.Open(ctx, cfg, Needs{})
	require.NoError(t, err)

	names, err := businessAPI.ListSearches(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = businessAPI.PreviewSearch(ctx, domain.SearchFilter{})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))

	require.NoError(t, backend.Close(ctx))
	assert.NoFileExists(t, cfg.Storage.HistoryDB)
}

func TestDefaultBackend_APIRequiresKey(t *testing.T) {
	cfg := testBackendConfig(t)
	cfg.API.Key = "  "

	_, err := NewDefaultBackend().Open(context.Background(), cfg, Needs{API: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
	assert.Contains(t, errors.GetUserMessage(err), config.APIKeyEnv)
}

func TestDefaultBackend_APIOpensHistoryAndMetrics(t *testing.T) {
	cfg := testBackendConfig(t)
	cfg.API.Key = "secret"
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "gf.prom")
	backend := NewDefaultBackend()
	ctx := context.Background()

	businessAPI, err := backend.Open(ctx, cfg, Needs{API: true})
	require.NoError(t, err)
	assert.FileExists(t, cfg.Storage.HistoryDB)

	runs, err := businessAPI.ListRuns(ctx, domain.RunSearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, backend.Close(ctx))
	assert.FileExists(t, cfg.Metrics.TextfilePath)
}

func TestDefaultBackend_HistoryFailure(t *testing.T) {
	cfg := testBackendConfig(t)
	cfg.API.Key = "secret"

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Storage.HistoryDB = filepath.Join(blocker, "gf.db")
	ctx := context.Background()

	t.Run("fatal when history is needed", func(t *testing.T) {
		_, err := NewDefaultBackend().Open(ctx, cfg, Needs{History: true})
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDatabase))
	})

	t.Run("tolerated for fetching", func(t *testing.T) {
		backend := NewDefaultBackend()
		businessAPI, err := backend.Open(ctx, cfg, Needs{API: true})
		require.NoError(t, err)

		runs, err := businessAPI.ListRuns(ctx, domain.RunSearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, runs)
		assert.NoError(t, backend.Close(ctx))
	})
}
