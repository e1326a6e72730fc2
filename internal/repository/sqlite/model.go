package sqlite

import "time"

// FetchRun is the fetch_runs row. The filter is stored as its JSON encoding.
type FetchRun struct {
	ID             int64
	SearchName     string
	FilterJSON     string
	PagesRequested int
	PagesFetched   int
	TotalHits      int
	RowCount       int
	OutputPath     string
	Status         string
	ErrorCode      string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time // Using pointer to allow NULL values
}
