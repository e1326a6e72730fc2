package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	runs RunSource
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(runs RunSource) ReportingService {
	return &reportingServiceImpl{runs: runs}
}

// ParseSortOrder converts a flag value into a SortOrder. An empty value
// means SortByRecentFirst.
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case "":
		return SortByRecentFirst, nil
	case SortByRecentFirst, SortByOldestFirst, SortByName, SortByRows:
		return order, nil
	default:
		return "", errors.NewInvalidInputError("sort", s, "use one of recent, oldest, name, rows")
	}
}

// GetHistorySummary loads the runs matching opts and summarizes them
func (r *reportingServiceImpl) GetHistorySummary(ctx context.Context, opts domain.RunSearchOptions, order SortOrder) (*HistorySummary, error) {
	runs, err := r.runs.SearchRuns(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.SummarizeRuns(runs, order), nil
}

// SummarizeRuns computes overall totals and per-search activity
func (r *reportingServiceImpl) SummarizeRuns(runs []domain.FetchRun, order SortOrder) *HistorySummary {
	summary := &HistorySummary{
		Searches:  []*SearchActivity{},
		RunCount:  len(runs),
		TotalTime: r.FormatDuration(r.CalculateTotalDuration(runs)),
	}

	for i, run := range runs {
		switch run.Status {
		case domain.RunStatusWritten:
			summary.WrittenCount++
			summary.RowsWritten += run.RowCount
		case domain.RunStatusFailed:
			summary.FailedCount++
		default:
			summary.RunningCount++
		}

		if d := run.Duration(); d > summary.LongestRun {
			summary.LongestRun = d
		}
		if i == 0 || run.StartedAt.Before(summary.FirstRun) {
			summary.FirstRun = run.StartedAt
		}
		if i == 0 || run.StartedAt.After(summary.LastRun) {
			summary.LastRun = run.StartedAt
		}
	}

	byName := r.AggregateBySearch(runs)
	activities := make([]*SearchActivity, 0, len(byName))
	for _, activity := range byName {
		activities = append(activities, activity)
	}
	summary.Searches = r.SortSearches(activities, order)

	return summary
}

// AggregateBySearch groups runs by saved search name
func (r *reportingServiceImpl) AggregateBySearch(runs []domain.FetchRun) map[string]*SearchActivity {
	activities := make(map[string]*SearchActivity)
	durations := make(map[string]time.Duration)

	for _, run := range runs {
		name := run.SearchName
		if name == "" {
			name = AdHocSearchName
		}

		activity, exists := activities[name]
		if !exists {
			activity = &SearchActivity{
				SearchName: name,
				LastRun:    run.StartedAt,
				LastStatus: run.Status,
			}
			activities[name] = activity
		}

		activity.RunCount++
		activity.PagesFetched += run.PagesFetched
		switch run.Status {
		case domain.RunStatusWritten:
			activity.WrittenCount++
			activity.RowsWritten += run.RowCount
		case domain.RunStatusFailed:
			activity.FailedCount++
		}

		if run.StartedAt.After(activity.LastRun) {
			activity.LastRun = run.StartedAt
			activity.LastStatus = run.Status
		}
		durations[name] += run.Duration()
	}

	for name, activity := range activities {
		activity.TotalTime = r.FormatDuration(durations[name])
	}
	return activities
}

// SortSearches returns a sorted copy of activities
func (r *reportingServiceImpl) SortSearches(activities []*SearchActivity, order SortOrder) []*SearchActivity {
	// Make a copy to avoid modifying the original
	sorted := make([]*SearchActivity, len(activities))
	copy(sorted, activities)

	byName := func(i, j int) bool { return sorted[i].SearchName < sorted[j].SearchName }

	switch order {
	case SortByOldestFirst:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].LastRun.Equal(sorted[j].LastRun) {
				return byName(i, j)
			}
			return sorted[i].LastRun.Before(sorted[j].LastRun)
		})
	case SortByName:
		sort.SliceStable(sorted, byName)
	case SortByRows:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].RowsWritten == sorted[j].RowsWritten {
				return byName(i, j)
			}
			return sorted[i].RowsWritten > sorted[j].RowsWritten
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].LastRun.Equal(sorted[j].LastRun) {
				return byName(i, j)
			}
			return sorted[i].LastRun.After(sorted[j].LastRun)
		})
	}

	return sorted
}

// CalculateTotalDuration adds up the time spent in finished runs
func (r *reportingServiceImpl) CalculateTotalDuration(runs []domain.FetchRun) time.Duration {
	var total time.Duration
	for _, run := range runs {
		total += run.Duration()
	}
	return total
}

// FormatDuration formats a duration as a human-readable string
func (r *reportingServiceImpl) FormatDuration(duration time.Duration) string {
	if duration < 0 {
		return "0s"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
