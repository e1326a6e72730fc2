package api

import (
	"context"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/repository/sqlite"
)

// History defines the run history operations backed by the run store.
type History interface {
	// StartRun records a run in the running state and returns it with its ID.
	StartRun(ctx context.Context, searchName string, filter domain.SearchFilter, pagesRequested int) (*domain.FetchRun, error)

	// FinishRun stores the outcome columns of a run started with StartRun.
	FinishRun(ctx context.Context, run *domain.FetchRun) error

	GetRun(ctx context.Context, id int64) (*domain.FetchRun, error)
	SearchRuns(ctx context.Context, opts domain.RunSearchOptions) ([]domain.FetchRun, error)
	DeleteRun(ctx context.Context, id int64) error
}

type historyImpl struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
	now    func() time.Time
}

// New creates a History backed by repo.
func New(repo sqlite.Repository) History {
	return &historyImpl{
		repo:   repo,
		mapper: domain.NewMapper(),
		now:    time.Now,
	}
}

func (h *historyImpl) StartRun(ctx context.Context, searchName string, filter domain.SearchFilter, pagesRequested int) (*domain.FetchRun, error) {
	run := domain.FetchRun{
		SearchName:     searchName,
		Filter:         filter.Clone(),
		PagesRequested: pagesRequested,
		Status:         domain.RunStatusRunning,
		StartedAt:      h.now().UTC().Truncate(time.Second),
	}

	row, err := h.mapper.FetchRun.ToDatabase(run)
	if err != nil {
		return nil, errors.NewDatabaseError("encode fetch run", err)
	}
	if err := h.repo.CreateRun(ctx, &row); err != nil {
		return nil, err
	}

	run.ID = row.ID
	return &run, nil
}

func (h *historyImpl) FinishRun(ctx context.Context, run *domain.FetchRun) error {
	if run == nil || run.ID <= 0 {
		return errors.NewInvalidInputError("run", run, "run was never started")
	}
	if !run.Status.IsValid() || run.Status == domain.RunStatusRunning {
		return errors.NewInvalidInputError("status", run.Status, "a finished run must be written or failed")
	}
	if run.FinishedAt == nil {
		finished := h.now().UTC().Truncate(time.Second)
		run.FinishedAt = &finished
	}

	row, err := h.mapper.FetchRun.ToDatabase(*run)
	if err != nil {
		return errors.NewDatabaseError("encode fetch run", err)
	}
	return h.repo.UpdateRun(ctx, &row)
}

func (h *historyImpl) GetRun(ctx context.Context, id int64) (*domain.FetchRun, error) {
	if id <= 0 {
		return nil, errors.NewInvalidInputError("run ID", id, "must be a positive number")
	}

	row, err := h.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	run, err := h.mapper.FetchRun.FromDatabase(*row)
	if err != nil {
		return nil, errors.NewDatabaseError("decode fetch run", err)
	}
	return &run, nil
}

func (h *historyImpl) SearchRuns(ctx context.Context, opts domain.RunSearchOptions) ([]domain.FetchRun, error) {
	if opts.Status != nil && !opts.Status.IsValid() {
		return nil, errors.NewInvalidInputError("status", *opts.Status, "must be running, written or failed")
	}

	rows, err := h.repo.SearchRuns(ctx, h.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}
	runs, err := h.mapper.FetchRun.FromDatabaseSlice(rows)
	if err != nil {
		return nil, errors.NewDatabaseError("decode fetch runs", err)
	}
	return runs, nil
}

func (h *historyImpl) DeleteRun(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.NewInvalidInputError("run ID", id, "must be a positive number")
	}
	return h.repo.DeleteRun(ctx, id)
}
