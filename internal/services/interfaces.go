package services

import (
	"context"
	"time"

	"grant-fetcher/internal/domain"
)

// AdHocSearchName labels runs that were not started from a saved search
const AdHocSearchName = "(ad hoc)"

// SearchActivity aggregates the recorded runs of one saved search
type SearchActivity struct {
	SearchName   string           `json:"search_name"`
	RunCount     int              `json:"run_count"`
	WrittenCount int              `json:"written_count"`
	FailedCount  int              `json:"failed_count"`
	RowsWritten  int              `json:"rows_written"`
	PagesFetched int              `json:"pages_fetched"`
	LastRun      time.Time        `json:"last_run"`
	LastStatus   domain.RunStatus `json:"last_status"`
	TotalTime    string           `json:"total_time"` // Human-readable time spent fetching
}

// HistorySummary represents the totals over a set of runs
type HistorySummary struct {
	Searches     []*SearchActivity `json:"searches"`
	RunCount     int               `json:"run_count"`
	WrittenCount int               `json:"written_count"`
	FailedCount  int               `json:"failed_count"`
	RunningCount int               `json:"running_count"`
	RowsWritten  int               `json:"rows_written"`
	TotalTime    string            `json:"total_time"`
	LongestRun   time.Duration     `json:"longest_run"`
	FirstRun     time.Time         `json:"first_run"`
	LastRun      time.Time         `json:"last_run"`
}

// SortOrder defines how search activity should be sorted
type SortOrder string

const (
	SortByRecentFirst SortOrder = "recent" // Most recently run (default)
	SortByOldestFirst SortOrder = "oldest" // Least recently run
	SortByName        SortOrder = "name"   // Alphabetical by search name
	SortByRows        SortOrder = "rows"   // Most rows written first
)

// RunSource is where recorded runs come from
type RunSource interface {
	SearchRuns(ctx context.Context, opts domain.RunSearchOptions) ([]domain.FetchRun, error)
}

// ReportingService handles analytics over the run history
type ReportingService interface {
	// History analysis
	GetHistorySummary(ctx context.Context, opts domain.RunSearchOptions, order SortOrder) (*HistorySummary, error)
	SummarizeRuns(runs []domain.FetchRun, order SortOrder) *HistorySummary

	// Aggregation operations
	AggregateBySearch(runs []domain.FetchRun) map[string]*SearchActivity
	SortSearches(activities []*SearchActivity, order SortOrder) []*SearchActivity
	CalculateTotalDuration(runs []domain.FetchRun) time.Duration
	FormatDuration(duration time.Duration) string
}
