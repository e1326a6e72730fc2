package cli

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/config"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend hands out the test App's BusinessAPI and records how it was
// opened.
type fakeBackend struct {
	env     *testApp
	openErr error

	needs  []Needs
	cfg    *config.Config
	closed int
}

func (b *fakeBackend) Open(_ context.Context, cfg *config.Config, needs Needs) (api.BusinessAPI, error) {
	b.needs = append(b.needs, needs)
	b.cfg = cfg
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.env.api, nil
}

func (b *fakeBackend) Close(context.Context) error {
	b.closed++
	return nil
}

// isolateEnv points GF_HOME at a temporary directory and clears every
// variable the loader reads.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("GF_HOME", home)
	for _, name := range []string{
		"GF_SETTINGS", config.APIKeyEnv, "GF_BASE_URL", "GF_TIMEOUT", "GF_RETRY_COUNT", "GF_RETRY_WAIT",
		"GF_USER_AGENT", "GF_SEARCHES_DIR", "GF_OUTPUT_DIR", "GF_HISTORY_DB", "GF_DIR_PERMISSIONS",
		"GF_APP_TIMEOUT", "GF_LOG_LEVEL", "GF_VERBOSE", "GF_DEBUG", "GF_METRICS_FILE",
	} {
		t.Setenv(name, "")
	}
	return home
}

func newTestRoot(t *testing.T, input string, args ...string) (*RootCommand, *fakeBackend, *testApp) {
	t.Helper()
	env := setupTestApp(t, "")
	backend := &fakeBackend{env: env}
	root := NewRootCommand(backend, strings.NewReader(input), env.out)
	root.SetArgs(args)
	return root, backend, env
}

func TestRootCommand_SearchesListNeedsNothing(t *testing.T) {
	home := isolateEnv(t)
	root, backend, env := newTestRoot(t, "", "searches", "list")

	require.NoError(t, root.Execute())

	assert.Equal(t, []Needs{{}}, backend.needs)
	assert.Equal(t, 1, backend.closed)
	assert.Equal(t, "No saved searches\n", env.out.String())
	assert.Equal(t, filepath.Join(home, "saved_searches"), backend.cfg.Storage.SearchesDir)
	assert.Equal(t, filepath.Join(home, "gf.db"), backend.cfg.Storage.HistoryDB)
}

func TestRootCommand_CommandNeeds(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		needs Needs
	}{
		{name: "fetch", args: []string{"fetch", "--subjects", "SJ02", "--prefix", "x"}, needs: Needs{API: true}},
		{name: "history", args: []string{"history", "--status", "failed"}, needs: Needs{History: true}},
		{name: "searches alias", args: []string{"search", "list"}, needs: Needs{}},
		{name: "delete", args: []string{"searches", "delete", "arts", "--yes"}, needs: Needs{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			root, backend, env := newTestRoot(t, tt.input, tt.args...)
			env.saveSearch(t, "arts", domain.FilterInput{Subjects: "SJ02"}, "")

			require.NoError(t, root.Execute())
			assert.Equal(t, []Needs{tt.needs}, backend.needs)
			assert.Equal(t, 1, backend.closed)
		})
	}
}

func TestRootCommand_FetchFlags(t *testing.T) {
	isolateEnv(t)
	root, _, env := newTestRoot(t, "", "fetch",
		"--start-year", "2020", "--end-year", "2021", "--subjects", "SJ02",
		"--pages", "2", "--first-page", "1", "--prefix", "flags")
	env.fetcher.numPages = 3

	require.NoError(t, root.Execute())
	assert.Equal(t, [][2]int{{1, 2}}, env.fetcher.calls)
	assert.Equal(t, []string{"flags_pages_1-2.json"}, env.outputFiles(t))
}

func TestRootCommand_GlobalFlagsOverrideConfig(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	t.Setenv("GF_OUTPUT_DIR", filepath.Join(dir, "from-env"))
	t.Setenv("GF_RETRY_COUNT", "1")

	root, backend, _ := newTestRoot(t, "",
		"--base-url", "http://localhost:9000",
		"--api-timeout", "5s",
		"--retries", "4",
		"--searches-dir", filepath.Join(dir, "searches"),
		"--output-dir", filepath.Join(dir, "from-flag"),
		"--history-db", filepath.Join(dir, "h.db"),
		"--timeout", "1m",
		"--log-level", "debug",
		"--metrics-file", filepath.Join(dir, "gf.prom"),
		"searches", "list")

	require.NoError(t, root.Execute())

	cfg := backend.cfg
	require.NotNil(t, cfg)
	assert.Same(t, cfg, root.Config())
	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4, cfg.API.RetryCount)
	assert.Equal(t, filepath.Join(dir, "searches"), cfg.Storage.SearchesDir)
	assert.Equal(t, filepath.Join(dir, "from-flag"), cfg.Storage.OutputDir)
	assert.Equal(t, filepath.Join(dir, "h.db"), cfg.Storage.HistoryDB)
	assert.Equal(t, time.Minute, cfg.Application.Timeout)
	assert.Equal(t, "debug", cfg.Application.LogLevel)
	assert.Equal(t, filepath.Join(dir, "gf.prom"), cfg.Metrics.TextfilePath)
}

func TestRootCommand_EnvironmentWithoutFlags(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GF_OUTPUT_DIR", "/tmp/gf-env-out")
	t.Setenv("GF_RETRY_COUNT", "1")
	t.Setenv(config.APIKeyEnv, "secret")

	root, backend, _ := newTestRoot(t, "", "searches", "list")
	require.NoError(t, root.Execute())

	assert.Equal(t, "/tmp/gf-env-out", backend.cfg.Storage.OutputDir)
	assert.Equal(t, 1, backend.cfg.API.RetryCount)
	assert.Equal(t, "secret", backend.cfg.API.Key)
}

func TestRootCommand_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "retries out of range", args: []string{"--retries", "9", "searches", "list"}, want: "retry count must be between 0 and 5"},
		{name: "bad base url", args: []string{"--base-url", "ftp://example.com", "searches", "list"}, want: "base URL must start with http:// or https://"},
		{name: "bad log level", args: []string{"--log-level", "loud", "searches", "list"}, want: "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			root, backend, _ := newTestRoot(t, "", tt.args...)

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
			assert.Empty(t, backend.needs)
		})
	}
}

func TestRootCommand_BackendError(t *testing.T) {
	isolateEnv(t)
	root, backend, _ := newTestRoot(t, "", "fetch", "--subjects", "SJ02")
	backend.openErr = errors.NewConfigError(config.APIKeyEnv+" is not set", nil)

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, "configuration error: "+config.APIKeyEnv+" is not set", err.Error())
	assert.Equal(t, 0, backend.closed)
}

func TestRootCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"bogus"}},
		{name: "unknown flag", args: []string{"fetch", "--colour"}},
		{name: "show without name", args: []string{"searches", "show"}},
		{name: "fetch with argument", args: []string{"fetch", "2020"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			root, backend, _ := newTestRoot(t, "", tt.args...)
			assert.Error(t, root.Execute())
			assert.Empty(t, backend.needs)
		})
	}
}

func TestRootCommand_NoArgsRunsWizard(t *testing.T) {
	isolateEnv(t)
	root, backend, _ := newTestRoot(t, "")

	err := root.Execute()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrInputClosed))
	assert.Equal(t, []Needs{{API: true}}, backend.needs)
}
