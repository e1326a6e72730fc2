package sqlite

import (
	"database/sql"
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// fetchRunColumns lists the columns ScanFetchRun expects, in order
const fetchRunColumns = `id, search_name, filter_json, pages_requested, pages_fetched,
	total_hits, row_count, output_path, status, error_code, error_message,
	started_at, finished_at`

// ScanFetchRun scans a single fetch run from a database row
func ScanFetchRun(scanner Scanner) (*FetchRun, error) {
	run := &FetchRun{}
	var startedAt string
	var finishedAt sql.NullString

	err := scanner.Scan(
		&run.ID,
		&run.SearchName,
		&run.FilterJSON,
		&run.PagesRequested,
		&run.PagesFetched,
		&run.TotalHits,
		&run.RowCount,
		&run.OutputPath,
		&run.Status,
		&run.ErrorCode,
		&run.ErrorMessage,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = ParseTimeFromDB(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at for run %d: %w", run.ID, err)
	}
	if run.FinishedAt, err = ParseNullTimeFromDB(finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at for run %d: %w", run.ID, err)
	}

	return run, nil
}

// ScanFetchRuns scans multiple fetch runs from database rows
func ScanFetchRuns(rows Rows) ([]*FetchRun, error) {
	var runs []*FetchRun
	for rows.Next() {
		run, err := ScanFetchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
