package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	r := New()

	r.ObserveRequest("200", 120*time.Millisecond)
	r.ObserveRequest("200", 80*time.Millisecond)
	r.ObserveRequest("error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.requestDuration))
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := New()

	r.ObserveRun("written", 25, 2*time.Second)
	r.ObserveRun("failed", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("written")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("failed")))
	assert.Equal(t, 25.0, testutil.ToFloat64(r.rowsTotal))
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveRun("written", 1, time.Second)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.runsTotal.WithLabelValues("written")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveRun("written", 3, time.Second)
	r.ObserveRequest("200", time.Millisecond)

	path := filepath.Join(t.TempDir(), "gf.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `grant_fetcher_runs_total{status="written"} 1`)
	assert.Contains(t, string(data), `grant_fetcher_rows_written_total 3`)
	assert.Contains(t, string(data), `grant_fetcher_api_requests_total{status="200"} 1`)

	assert.NoError(t, r.WriteTextfile(""))
}
