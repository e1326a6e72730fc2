package domain

import (
	"encoding/json"
	"fmt"

	"grant-fetcher/internal/repository/sqlite"
)

// FetchRunMapper handles conversion between domain and database FetchRun models.
type FetchRunMapper struct{}

// NewFetchRunMapper creates a new FetchRunMapper instance.
func NewFetchRunMapper() *FetchRunMapper {
	return &FetchRunMapper{}
}

// ToDatabase converts a domain FetchRun to a database FetchRun.
func (m *FetchRunMapper) ToDatabase(run FetchRun) (sqlite.FetchRun, error) {
	filterJSON, err := json.Marshal(run.Filter)
	if err != nil {
		return sqlite.FetchRun{}, fmt.Errorf("encode filter: %w", err)
	}
	return sqlite.FetchRun{
		ID:             run.ID,
		SearchName:     run.SearchName,
		FilterJSON:     string(filterJSON),
		PagesRequested: run.PagesRequested,
		PagesFetched:   run.PagesFetched,
		TotalHits:      run.TotalHits,
		RowCount:       run.RowCount,
		OutputPath:     run.OutputPath,
		Status:         string(run.Status),
		ErrorCode:      run.ErrorCode,
		ErrorMessage:   run.ErrorMessage,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
	}, nil
}

// FromDatabase converts a database FetchRun to a domain FetchRun.
func (m *FetchRunMapper) FromDatabase(row sqlite.FetchRun) (FetchRun, error) {
	var filter SearchFilter
	if row.FilterJSON != "" {
		if err := json.Unmarshal([]byte(row.FilterJSON), &filter); err != nil {
			return FetchRun{}, fmt.Errorf("decode filter for run %d: %w", row.ID, err)
		}
	}
	return FetchRun{
		ID:             row.ID,
		SearchName:     row.SearchName,
		Filter:         filter,
		PagesRequested: row.PagesRequested,
		PagesFetched:   row.PagesFetched,
		TotalHits:      row.TotalHits,
		RowCount:       row.RowCount,
		OutputPath:     row.OutputPath,
		Status:         RunStatus(row.Status),
		ErrorCode:      row.ErrorCode,
		ErrorMessage:   row.ErrorMessage,
		StartedAt:      row.StartedAt,
		FinishedAt:     row.FinishedAt,
	}, nil
}

// FromDatabaseSlice converts a slice of database FetchRuns to domain FetchRuns.
func (m *FetchRunMapper) FromDatabaseSlice(rows []*sqlite.FetchRun) ([]FetchRun, error) {
	runs := make([]FetchRun, 0, len(rows))
	for _, row := range rows {
		run, err := m.FromDatabase(*row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// SearchOptionsMapper handles conversion between domain and database search options.
type SearchOptionsMapper struct{}

// NewSearchOptionsMapper creates a new SearchOptionsMapper instance.
func NewSearchOptionsMapper() *SearchOptionsMapper {
	return &SearchOptionsMapper{}
}

// ToDatabase converts domain RunSearchOptions to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(opts RunSearchOptions) sqlite.SearchOptions {
	var status *string
	if opts.Status != nil {
		s := string(*opts.Status)
		status = &s
	}
	return sqlite.SearchOptions{
		SearchName: opts.SearchName,
		Status:     status,
		Since:      opts.Since,
		Limit:      opts.Limit,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	FetchRun      *FetchRunMapper
	SearchOptions *SearchOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		FetchRun:      NewFetchRunMapper(),
		SearchOptions: NewSearchOptionsMapper(),
	}
}
