package api

import (
	"context"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/logging"
	"grant-fetcher/internal/output"
	"grant-fetcher/internal/repository/jsonfile"
	"grant-fetcher/internal/services"
	"grant-fetcher/internal/validation"

	"go.uber.org/zap"
)

// SearchStore persists named searches.
type SearchStore interface {
	Save(ctx context.Context, search domain.SavedSearch, opts jsonfile.SaveOptions) (domain.SavedSearch, error)
	Load(ctx context.Context, name string) (domain.SavedSearch, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Fetcher retrieves result pages from the grants API.
type Fetcher interface {
	FetchPages(ctx context.Context, f domain.SearchFilter, first, count int) (*domain.ResultSet, error)
}

// ResultWriter persists result sets.
type ResultWriter interface {
	Write(rs *domain.ResultSet, dest string, opts output.WriteOptions) (string, error)
	DefaultPath(dir, prefix string, first, last int) string
}

// RunObserver is told about every finished run.
type RunObserver interface {
	ObserveRun(status string, rows int, elapsed time.Duration)
}

// RunRequest describes one fetch-and-persist run.
type RunRequest struct {
	// SearchName labels the run in history when the filter came from a saved search.
	SearchName string
	Filter     domain.SearchFilter

	// SaveAs stores the filter under this name before fetching.
	SaveAs        string
	OverwriteSave bool

	FirstPage int
	Pages     int

	// Output is the destination file; empty means OutputDir plus a generated name.
	Output       string
	OutputPrefix string
	Overwrite    bool
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	Run       domain.FetchRun
	Path      string
	ResultSet *domain.ResultSet
	Saved     *domain.SavedSearch
}

// BusinessAPI defines the workflows offered to the command line
type BusinessAPI interface {
	// ========== Fetch Workflows ==========

	// BuildFilter validates raw input into a SearchFilter
	BuildFilter(ctx context.Context, in domain.FilterInput) (domain.SearchFilter, error)

	// PreviewSearch fetches the first page only, to report totals before a run
	PreviewSearch(ctx context.Context, f domain.SearchFilter) (*domain.ResultSet, error)

	// RunSearch saves (optionally), fetches, writes and records one run
	RunSearch(ctx context.Context, req RunRequest) (*RunResult, error)

	// ========== Saved Searches ==========

	SaveSearch(ctx context.Context, name string, f domain.SearchFilter, outputPrefix string, overwrite bool) (*domain.SavedSearch, error)
	LoadSearch(ctx context.Context, name string) (*domain.SavedSearch, error)
	ListSearches(ctx context.Context) ([]string, error)
	DeleteSearch(ctx context.Context, name string) error

	// ========== History ==========

	// ListRuns returns recorded runs, newest first
	ListRuns(ctx context.Context, opts domain.RunSearchOptions) ([]domain.FetchRun, error)

	// SummarizeHistory aggregates the matching runs per saved search
	SummarizeHistory(ctx context.Context, opts domain.RunSearchOptions, order services.SortOrder) (*services.HistorySummary, error)
}

// Dependencies wires a BusinessAPI. Fetcher may be nil for commands that
// never reach the network; History and Observer are optional.
type Dependencies struct {
	Store     SearchStore
	Fetcher   Fetcher
	Writer    ResultWriter
	History   History
	Observer  RunObserver
	OutputDir string
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	deps      Dependencies
	validator *validation.FilterValidator
	reporting services.ReportingService
	now       func() time.Time
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(deps Dependencies) BusinessAPI {
	impl := &businessAPIImpl{
		deps:      deps,
		validator: validation.NewFilterValidator(),
		now:       time.Now,
	}
	if deps.History != nil {
		impl.reporting = services.NewReportingService(deps.History)
	}
	return impl
}

// ========== Fetch Workflows ==========

func (b *businessAPIImpl) BuildFilter(ctx context.Context, in domain.FilterInput) (domain.SearchFilter, error) {
	return b.validator.Build(in)
}

func (b *businessAPIImpl) PreviewSearch(ctx context.Context, f domain.SearchFilter) (*domain.ResultSet, error) {
	if err := b.validator.Validate(f); err != nil {
		return nil, err
	}
	if err := b.requireFetcher(); err != nil {
		return nil, err
	}
	return b.deps.Fetcher.FetchPages(ctx, f, 1, 1)
}

func (b *businessAPIImpl) RunSearch(ctx context.Context, req RunRequest) (*RunResult, error) {
	logger := logging.FromContext(ctx)

	// 1. Validate before anything touches disk or network
	filter := b.validator.Normalize(req.Filter)
	if err := b.validator.Validate(filter); err != nil {
		return nil, err
	}
	if req.FirstPage < 1 {
		req.FirstPage = 1
	}
	if req.Pages < 1 {
		req.Pages = 1
	}
	if err := b.requireFetcher(); err != nil {
		return nil, err
	}

	result := &RunResult{}
	searchName := req.SearchName

	// 2. Optional save
	if req.SaveAs != "" {
		saved, err := b.SaveSearch(ctx, req.SaveAs, filter, req.OutputPrefix, req.OverwriteSave)
		if err != nil {
			return nil, err
		}
		result.Saved = saved
		searchName = saved.Name
	}

	// 3. Record the start of the run
	started := b.now()
	run := b.startRun(ctx, searchName, filter, req.Pages)

	// 4. Fetch
	rs, err := b.deps.Fetcher.FetchPages(ctx, filter, req.FirstPage, req.Pages)
	if err != nil {
		b.finishRun(ctx, run, started, nil, "", err)
		return nil, err
	}

	// 5. Write
	dest := req.Output
	if dest == "" {
		dest = b.deps.Writer.DefaultPath(b.deps.OutputDir, req.OutputPrefix, rs.FirstPage, rs.LastPage)
	}
	path, err := b.deps.Writer.Write(rs, dest, output.WriteOptions{Overwrite: req.Overwrite})
	if err != nil {
		b.finishRun(ctx, run, started, rs, "", err)
		return nil, err
	}

	// 6. Record the outcome
	result.Run = b.finishRun(ctx, run, started, rs, path, nil)
	result.Path = path
	result.ResultSet = rs

	logger.Info("run complete",
		zap.String("path", path),
		zap.Int("rows", rs.RowCount),
		zap.Int("pages", rs.PagesFetched()))
	return result, nil
}

// startRun records the run in history. A failure is logged and the run
// carries on unrecorded.
func (b *businessAPIImpl) startRun(ctx context.Context, searchName string, f domain.SearchFilter, pages int) *domain.FetchRun {
	if b.deps.History == nil {
		return nil
	}
	run, err := b.deps.History.StartRun(ctx, searchName, f, pages)
	if err != nil {
		logging.FromContext(ctx).Warn("could not record run start", zap.Error(err))
		return nil
	}
	return run
}

// finishRun fills in the outcome, stores it when the run was recorded, and
// reports it to the observer. The returned copy is what the caller sees
// even when history is unavailable.
func (b *businessAPIImpl) finishRun(ctx context.Context, run *domain.FetchRun, started time.Time, rs *domain.ResultSet, path string, runErr error) domain.FetchRun {
	outcome := domain.FetchRun{StartedAt: started.UTC().Truncate(time.Second)}
	if run != nil {
		outcome = *run
	}

	finished := b.now().UTC().Truncate(time.Second)
	outcome.FinishedAt = &finished
	outcome.OutputPath = path
	if rs != nil {
		outcome.PagesFetched = rs.PagesFetched()
		outcome.TotalHits = rs.TotalHits
		outcome.RowCount = rs.RowCount
	}
	if runErr != nil {
		outcome.Status = domain.RunStatusFailed
		outcome.ErrorCode = errors.GetErrorCode(runErr)
		outcome.ErrorMessage = runErr.Error()
	} else {
		outcome.Status = domain.RunStatusWritten
	}

	if run != nil {
		if err := b.deps.History.FinishRun(ctx, &outcome); err != nil {
			logging.FromContext(ctx).Warn("could not record run outcome",
				zap.Int64("run_id", outcome.ID), zap.Error(err))
		}
	}
	if b.deps.Observer != nil {
		b.deps.Observer.ObserveRun(string(outcome.Status), outcome.RowCount, b.now().Sub(started))
	}
	return outcome
}

func (b *businessAPIImpl) requireFetcher() error {
	if b.deps.Fetcher == nil {
		return errors.NewConfigError("no API client configured", nil)
	}
	return nil
}

// ========== Saved Searches ==========

func (b *businessAPIImpl) SaveSearch(ctx context.Context, name string, f domain.SearchFilter, outputPrefix string, overwrite bool) (*domain.SavedSearch, error) {
	saved, err := b.deps.Store.Save(ctx,
		domain.NewSavedSearch(name, b.validator.Normalize(f), outputPrefix),
		jsonfile.SaveOptions{Overwrite: overwrite})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (b *businessAPIImpl) LoadSearch(ctx context.Context, name string) (*domain.SavedSearch, error) {
	saved, err := b.deps.Store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (b *businessAPIImpl) ListSearches(ctx context.Context) ([]string, error) {
	return b.deps.Store.List(ctx)
}

func (b *businessAPIImpl) DeleteSearch(ctx context.Context, name string) error {
	return b.deps.Store.Delete(ctx, name)
}

// ========== History ==========

func (b *businessAPIImpl) ListRuns(ctx context.Context, opts domain.RunSearchOptions) ([]domain.FetchRun, error) {
	if b.deps.History == nil {
		return []domain.FetchRun{}, nil
	}
	return b.deps.History.SearchRuns(ctx, opts)
}

func (b *businessAPIImpl) SummarizeHistory(ctx context.Context, opts domain.RunSearchOptions, order services.SortOrder) (*services.HistorySummary, error) {
	if b.reporting == nil {
		return services.NewReportingService(nil).SummarizeRuns(nil, order), nil
	}
	return b.reporting.GetHistorySummary(ctx, opts, order)
}
