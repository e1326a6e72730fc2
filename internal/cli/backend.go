package cli

import (
	"context"
	"os"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/candid"
	"grant-fetcher/internal/config"
	"grant-fetcher/internal/logging"
	"grant-fetcher/internal/metrics"
	"grant-fetcher/internal/output"
	"grant-fetcher/internal/repository/sqlite"

	"go.uber.org/zap"
)

// Needs says which services a command depends on.
type Needs struct {
	// API requires an API key and wires the Candid client.
	API bool
	// History makes a run store failure fatal instead of a warning.
	History bool
}

// Backend builds the BusinessAPI a command runs against and releases it
// afterwards.
type Backend interface {
	Open(ctx context.Context, cfg *config.Config, needs Needs) (api.BusinessAPI, error)
	Close(ctx context.Context) error
}

// defaultBackend wires the file store, the sqlite history, the Candid
// client and the metrics recorder from configuration.
type defaultBackend struct {
	repo        sqlite.Repository
	recorder    *metrics.Recorder
	metricsPath string
}

// NewDefaultBackend creates the production Backend
func NewDefaultBackend() Backend {
	return &defaultBackend{}
}

func (b *defaultBackend) Open(ctx context.Context, cfg *config.Config, needs Needs) (api.BusinessAPI, error) {
	logger := logging.FromContext(ctx)

	deps := api.Dependencies{
		Store:     config.CreateSearchStore(cfg),
		Writer:    output.NewWriter(os.FileMode(cfg.Storage.DirPermissions)),
		OutputDir: cfg.Storage.OutputDir,
	}

	if needs.API {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		if cfg.Metrics.TextfilePath != "" {
			b.recorder = metrics.New()
			b.metricsPath = cfg.Metrics.TextfilePath
			deps.Observer = b.recorder
		}

		opts := candid.Options{
			BaseURL:    cfg.API.BaseURL,
			APIKey:     cfg.API.Key,
			Timeout:    cfg.API.Timeout,
			RetryCount: cfg.API.RetryCount,
			RetryWait:  cfg.API.RetryWait,
			UserAgent:  cfg.API.UserAgent,
			Logger:     logger,
		}
		if b.recorder != nil {
			opts.Observer = b.recorder
		}
		deps.Fetcher = candid.New(opts)
	}

	if needs.API || needs.History {
		repo, err := config.CreateRepository(cfg)
		switch {
		case err == nil:
			b.repo = repo
			deps.History = api.New(repo)
		case needs.History:
			return nil, err
		default:
			logger.Warn("run history unavailable", zap.String("path", cfg.Storage.HistoryDB), zap.Error(err))
		}
	}

	return api.NewBusinessAPI(deps), nil
}

func (b *defaultBackend) Close(ctx context.Context) error {
	if b.recorder != nil {
		if err := b.recorder.WriteTextfile(b.metricsPath); err != nil {
			logging.FromContext(ctx).Warn("could not write metrics textfile",
				zap.String("path", b.metricsPath), zap.Error(err))
		}
	}
	if b.repo != nil {
		return b.repo.Close()
	}
	return nil
}
