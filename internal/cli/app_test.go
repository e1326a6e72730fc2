package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/config"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/output"
	"grant-fetcher/internal/repository/jsonfile"

	"github.com/stretchr/testify/require"
)

// scriptedFetcher answers every page request from a fixed result shape.
type scriptedFetcher struct {
	numPages    int
	rowsPerPage int
	totalHits   int
	err         error

	calls [][2]int
}

func (f *scriptedFetcher) FetchPages(_ context.Context, _ domain.SearchFilter, first, count int) (*domain.ResultSet, error) {
	f.calls = append(f.calls, [2]int{first, count})
	if f.err != nil {
		return nil, f.err
	}

	last := first + count - 1
	if f.numPages > 0 && last > f.numPages {
		last = f.numPages
	}
	rows := 0
	if last >= first {
		rows = (last - first + 1) * f.rowsPerPage
	}
	payload := fmt.Sprintf(`{"first":%d,"last":%d,"rows":%d}`, first, last, rows)

	return &domain.ResultSet{
		Payload:   json.RawMessage(payload),
		TotalHits: f.totalHits,
		NumPages:  f.numPages,
		FirstPage: first,
		LastPage:  last,
		RowCount:  rows,
	}, nil
}

type testApp struct {
	app       *App
	api       api.BusinessAPI
	fetcher   *scriptedFetcher
	out       *bytes.Buffer
	outputDir string
	store     *jsonfile.SearchStore
}

// setupTestApp builds an App over the real business layer with a scripted
// fetcher, a temporary search store and an in-memory history. input is
// what the prompter reads.
func setupTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	dir := t.TempDir()

	repo, err := config.CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	env := &testApp{
		fetcher:   &scriptedFetcher{numPages: 1, rowsPerPage: 3, totalHits: 3},
		out:       &bytes.Buffer{},
		outputDir: filepath.Join(dir, "out"),
		store:     jsonfile.NewSearchStore(filepath.Join(dir, "searches"), 0755),
	}
	env.api = api.NewBusinessAPI(api.Dependencies{
		Store:     env.store,
		Fetcher:   env.fetcher,
		Writer:    output.NewWriter(0755),
		History:   api.New(repo),
		OutputDir: env.outputDir,
	})
	env.app = NewAppWithIO(env.api, nil, strings.NewReader(input), env.out)
	return env
}

// saveSearch stores a search through the business layer.
func (e *testApp) saveSearch(t *testing.T, name string, in domain.FilterInput, prefix string) {
	t.Helper()
	ctx := context.Background()
	f, err := e.api.BuildFilter(ctx, in)
	require.NoError(t, err)
	_, err = e.api.SaveSearch(ctx, name, f, prefix, false)
	require.NoError(t, err)
}

// outputFiles lists the result files written so far.
func (e *testApp) outputFiles(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(e.outputDir, "*.json"))
	require.NoError(t, err)
	for i, f := range files {
		files[i] = filepath.Base(f)
	}
	return files
}

// freezeTime pins timeNow for the duration of the test.
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}
