package domain

import "time"

// RunStatus is the state of a fetch run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusWritten RunStatus = "written"
	RunStatusFailed  RunStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusWritten, RunStatusFailed:
		return true
	}
	return false
}

// FetchRun records one invocation of the fetch pipeline.
type FetchRun struct {
	ID             int64
	SearchName     string
	Filter         SearchFilter
	PagesRequested int
	PagesFetched   int
	TotalHits      int
	RowCount       int
	OutputPath     string
	Status         RunStatus
	ErrorCode      string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// Duration returns how long the run took, or zero while it is unfinished.
func (r FetchRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
