package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordRuns performs one written and one failed run.
func recordRuns(t *testing.T, env *testApp) {
	t.Helper()
	ctx := context.Background()
	filter, err := env.api.BuildFilter(ctx, domain.FilterInput{Subjects: "SJ02"})
	require.NoError(t, err)

	_, err = env.api.RunSearch(ctx, api.RunRequest{SearchName: "arts", Filter: filter, OutputPrefix: "arts"})
	require.NoError(t, err)

	env.fetcher.err = errors.NewAPIError(400, "Invalid subject code")
	_, err = env.api.RunSearch(ctx, api.RunRequest{Filter: filter, OutputPrefix: "broken"})
	require.Error(t, err)
	env.fetcher.err = nil
}

func TestHistoryCommand_Empty(t *testing.T) {
	env := setupTestApp(t, "")
	require.NoError(t, NewHistoryCommand(env.app, nil).Execute(context.Background(), nil))
	assert.Equal(t, "No runs recorded\n", env.out.String())
}

func TestHistoryCommand_ListsRuns(t *testing.T) {
	env := setupTestApp(t, "")
	recordRuns(t, env)

	require.NoError(t, NewHistoryCommand(env.app, nil).Execute(context.Background(), nil))

	out := env.out.String()
	assert.Contains(t, out, "arts_pages_1-1.json")
	assert.Contains(t, out, "written")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "API_ERROR")
	assert.Contains(t, out, "Invalid subject code")
}

func TestHistoryCommand_Filters(t *testing.T) {
	tests := []struct {
		name     string
		opts     HistoryOptions
		contains []string
		excludes []string
	}{
		{
			name:     "by status",
			opts:     HistoryOptions{Status: "failed"},
			contains: []string{"failed"},
			excludes: []string{"arts_pages_1-1.json"},
		},
		{
			name:     "by search",
			opts:     HistoryOptions{Search: "arts"},
			contains: []string{"arts_pages_1-1.json"},
			excludes: []string{"Invalid subject code"},
		},
		{
			name:     "since",
			opts:     HistoryOptions{Since: "1h"},
			contains: []string{"arts_pages_1-1.json", "Invalid subject code"},
		},
		{
			name:     "limit",
			opts:     HistoryOptions{Limit: 1},
			contains: []string{"Invalid subject code"},
			excludes: []string{"arts_pages_1-1.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestApp(t, "")
			recordRuns(t, env)

			opts := tt.opts
			require.NoError(t, NewHistoryCommand(env.app, &opts).Execute(context.Background(), nil))

			out := env.out.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestHistoryCommand_SinceExcludesOlderRuns(t *testing.T) {
	env := setupTestApp(t, "")
	recordRuns(t, env)
	freezeTime(t, time.Now().Add(48*time.Hour))

	opts := &HistoryOptions{Since: "1d"}
	require.NoError(t, NewHistoryCommand(env.app, opts).Execute(context.Background(), nil))
	assert.Equal(t, "No runs recorded\n", env.out.String())
}

func TestHistoryCommand_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts HistoryOptions
		want string
	}{
		{name: "bad since", opts: HistoryOptions{Since: "soon"}, want: "use a period like 30m, 2h, 1d, 2w"},
		{name: "bad status", opts: HistoryOptions{Status: "done"}, want: "failed to list runs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestApp(t, "")
			opts := tt.opts
			err := NewHistoryCommand(env.app, &opts).Execute(context.Background(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHistoryCommand_Summary(t *testing.T) {
	env := setupTestApp(t, "")
	recordRuns(t, env)

	opts := &HistoryOptions{Summary: true, Sort: "name", Limit: 1}
	require.NoError(t, NewHistoryCommand(env.app, opts).Execute(context.Background(), nil))

	out := env.out.String()
	assert.Contains(t, out, "arts")
	assert.Contains(t, out, services.AdHocSearchName)
	assert.Less(t, strings.Index(out, services.AdHocSearchName), strings.Index(out, "arts"))
}

func TestHistoryCommand_SummaryEmptyAndBadSort(t *testing.T) {
	env := setupTestApp(t, "")
	require.NoError(t, NewHistoryCommand(env.app, &HistoryOptions{Summary: true}).Execute(context.Background(), nil))
	assert.Equal(t, "No runs recorded\n", env.out.String())

	err := NewHistoryCommand(env.app, &HistoryOptions{Summary: true, Sort: "duration"}).Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use one of recent, oldest, name, rows")
}
