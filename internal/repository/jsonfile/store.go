// Package jsonfile stores saved searches as one pretty-printed JSON file per
// search inside a directory.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/logging"
	"grant-fetcher/internal/validation"

	"go.uber.org/zap"
)

const fileExt = ".json"

// SaveOptions controls Save.
type SaveOptions struct {
	Overwrite bool
}

// SearchStore is a directory of saved searches.
type SearchStore struct {
	dir       string
	dirPerm   os.FileMode
	validator *validation.FilterValidator
	now       func() time.Time
}

// NewSearchStore creates a store rooted at dir. The directory is created on
// the first save.
func NewSearchStore(dir string, dirPerm os.FileMode) *SearchStore {
	return &SearchStore{
		dir:       dir,
		dirPerm:   dirPerm,
		validator: validation.NewFilterValidator(),
		now:       time.Now,
	}
}

// Dir returns the directory the store reads and writes.
func (s *SearchStore) Dir() string {
	return s.dir
}

// Path returns the file a search with the given name is stored in.
func (s *SearchStore) Path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Save writes search under search.Name. An existing search is only replaced
// when opts.Overwrite is set. The stored copy, with SavedAt filled in, is
// returned.
func (s *SearchStore) Save(ctx context.Context, search domain.SavedSearch, opts SaveOptions) (domain.SavedSearch, error) {
	if err := ctx.Err(); err != nil {
		return domain.SavedSearch{}, err
	}
	if err := s.validator.ValidateSearchName(search.Name); err != nil {
		return domain.SavedSearch{}, err
	}
	filter := s.validator.Normalize(search.Filter)
	if err := s.validator.Validate(filter); err != nil {
		return domain.SavedSearch{}, err
	}

	path := s.Path(search.Name)
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return domain.SavedSearch{}, duplicateSearch(search.Name, path)
		}
	}

	stored := domain.NewSavedSearch(search.Name, filter, search.OutputPrefix)
	stored.SavedAt = s.now().UTC().Truncate(time.Second)

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return domain.SavedSearch{}, errors.NewWriteError(path, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, s.dirPerm); err != nil {
		return domain.SavedSearch{}, errors.NewWriteError(s.dir, err)
	}
	if err := writeFileAtomic(path, data, opts.Overwrite); err != nil {
		if !opts.Overwrite && stderrors.Is(err, fs.ErrExist) {
			return domain.SavedSearch{}, duplicateSearch(search.Name, path)
		}
		return domain.SavedSearch{}, errors.NewWriteError(path, err)
	}

	logging.FromContext(ctx).Debug("saved search written",
		zap.String("name", stored.Name), zap.String("path", path))
	return stored, nil
}

// Load reads the search saved under name.
func (s *SearchStore) Load(ctx context.Context, name string) (domain.SavedSearch, error) {
	if err := ctx.Err(); err != nil {
		return domain.SavedSearch{}, err
	}
	if err := s.validator.ValidateSearchName(name); err != nil {
		return domain.SavedSearch{}, err
	}

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return domain.SavedSearch{}, errors.NewNotFoundError("saved search", name)
		}
		return domain.SavedSearch{}, errors.NewConfigError("could not read saved search "+name, err)
	}

	search, err := decodeSearch(name, data)
	if err != nil {
		return domain.SavedSearch{}, errors.NewConfigError("saved search "+name+" is malformed", err).
			WithContext("path", path)
	}

	search.Filter = s.validator.Normalize(search.Filter)
	if err := s.validator.Validate(search.Filter); err != nil {
		return domain.SavedSearch{}, errors.NewConfigError("saved search "+name+" holds an invalid filter", err).
			WithContext("path", path)
	}
	return search, nil
}

// List returns the names of every saved search, sorted.
func (s *SearchStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, errors.NewConfigError("could not list saved searches in "+s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExt)
		if s.validator.ValidateSearchName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the search saved under name.
func (s *SearchStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validator.ValidateSearchName(name); err != nil {
		return err
	}

	path := s.Path(name)
	if err := os.Remove(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.NewNotFoundError("saved search", name)
		}
		return errors.NewWriteError(path, err)
	}

	logging.FromContext(ctx).Debug("saved search deleted", zap.String("name", name))
	return nil
}

// storedSearch is the on-disk layout. Files written by earlier versions
// have no "filter" object and keep year_range/dollar_range pairs at the
// top level instead.
type storedSearch struct {
	Name         string               `json:"name"`
	Filter       *domain.SearchFilter `json:"filter"`
	OutputPrefix string               `json:"output_prefix"`
	SavedAt      time.Time            `json:"saved_at"`

	YearRange         []*int64 `json:"year_range"`
	DollarRange       []*int64 `json:"dollar_range"`
	Subjects          []string `json:"subjects"`
	Populations       []string `json:"populations"`
	Locations         []string `json:"locations"`
	SupportStrategies []string `json:"support_strategies"`
}

func decodeSearch(name string, data []byte) (domain.SavedSearch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw storedSearch
	if err := dec.Decode(&raw); err != nil {
		return domain.SavedSearch{}, err
	}

	search := domain.SavedSearch{
		Name:         name,
		OutputPrefix: raw.OutputPrefix,
		SavedAt:      raw.SavedAt,
	}
	if raw.Filter != nil {
		search.Filter = raw.Filter.Clone()
		return search, nil
	}

	start, end, err := pair("year_range", raw.YearRange)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	minAmt, maxAmt, err := pair("dollar_range", raw.DollarRange)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	search.Filter = domain.SearchFilter{
		StartYear:         toInt(start),
		EndYear:           toInt(end),
		MinAmount:         minAmt,
		MaxAmount:         maxAmt,
		Subjects:          raw.Subjects,
		Populations:       raw.Populations,
		Locations:         raw.Locations,
		SupportStrategies: raw.SupportStrategies,
	}
	return search, nil
}

func pair(field string, values []*int64) (*int64, *int64, error) {
	switch len(values) {
	case 0:
		return nil, nil, nil
	case 2:
		return values[0], values[1], nil
	default:
		return nil, nil, fmt.Errorf("%s must hold two values, got %d", field, len(values))
	}
}

func toInt(v *int64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func duplicateSearch(name, path string) error {
	return errors.NewDuplicateNameError("saved search", name).WithContext("path", path)
}

// writeFileAtomic writes data to a temp file next to path and moves it into
// place. Without replace, the file is linked in so an existing path is never
// clobbered and fs.ErrExist is returned instead.
func writeFileAtomic(path string, data []byte, replace bool) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if !replace {
		return os.Link(tmpName, path)
	}
	return os.Rename(tmpName, path)
}
