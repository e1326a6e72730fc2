package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// SearchOptions contains all possible run history filters
type SearchOptions struct {
	SearchName *string
	Status     *string
	Since      *time.Time
	Limit      int
}

// Repository defines the interface for fetch history operations
type Repository interface {
	// Create operations
	CreateRun(ctx context.Context, run *FetchRun) error

	// Read operations
	GetRun(ctx context.Context, id int64) (*FetchRun, error)
	ListRuns(ctx context.Context, limit int) ([]*FetchRun, error)
	SearchRuns(ctx context.Context, opts SearchOptions) ([]*FetchRun, error)

	// Update operations
	UpdateRun(ctx context.Context, run *FetchRun) error

	// Delete operations
	DeleteRun(ctx context.Context, id int64) error

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db *sql.DB
}

// New creates a new SQLite repository instance, creating the parent
// directory of dbPath when needed
func New(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.NewDatabaseError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// CreateRun inserts a fetch run and sets its ID
func (r *SQLiteRepository) CreateRun(ctx context.Context, run *FetchRun) error {
	query := `
	INSERT INTO fetch_runs (search_name, filter_json, pages_requested, pages_fetched,
		total_hits, row_count, output_path, status, error_code, error_message,
		started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query,
		run.SearchName, filterJSONOrEmpty(run.FilterJSON), run.PagesRequested, run.PagesFetched,
		run.TotalHits, run.RowCount, run.OutputPath, run.Status, run.ErrorCode, run.ErrorMessage,
		FormatTimeForDB(run.StartedAt), FormatTimePtrForDB(run.FinishedAt))
	if err != nil {
		return err
	}

	run.ID = id
	return nil
}

// GetRun retrieves a fetch run by ID
func (r *SQLiteRepository) GetRun(ctx context.Context, id int64) (*FetchRun, error) {
	query := `SELECT ` + fetchRunColumns + ` FROM fetch_runs WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanFetchRun, "fetch run", fmt.Sprintf("%d", id), id)
}

// ListRuns retrieves the most recent fetch runs, newest first
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*FetchRun, error) {
	return r.SearchRuns(ctx, SearchOptions{Limit: limit})
}

// UpdateRun updates the outcome columns of an existing fetch run
func (r *SQLiteRepository) UpdateRun(ctx context.Context, run *FetchRun) error {
	query := `
	UPDATE fetch_runs
	SET pages_fetched = ?, total_hits = ?, row_count = ?, output_path = ?,
		status = ?, error_code = ?, error_message = ?, finished_at = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "fetch run", fmt.Sprintf("%d", run.ID),
		run.PagesFetched, run.TotalHits, run.RowCount, run.OutputPath,
		run.Status, run.ErrorCode, run.ErrorMessage, FormatTimePtrForDB(run.FinishedAt),
		run.ID)
}

// DeleteRun deletes a fetch run by ID
func (r *SQLiteRepository) DeleteRun(ctx context.Context, id int64) error {
	query := `DELETE FROM fetch_runs WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "fetch run", fmt.Sprintf("%d", id), id)
}

// SearchRuns searches the history based on the provided options, newest first
func (r *SQLiteRepository) SearchRuns(ctx context.Context, opts SearchOptions) ([]*FetchRun, error) {
	var conditions []string
	var args []interface{}

	if opts.SearchName != nil && *opts.SearchName != "" {
		conditions = append(conditions, "search_name = ?")
		args = append(args, *opts.SearchName)
	}
	if opts.Status != nil && *opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Since != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, FormatTimePtrForDB(opts.Since))
	}

	query := `SELECT ` + fetchRunColumns + ` FROM fetch_runs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	return QueryMultiple(ctx, r.db, query, ScanFetchRuns, "fetch runs", args...)
}

func filterJSONOrEmpty(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
