// Package metrics counts fetch runs and API requests and can dump them in
// the node exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grant_fetcher"

// Recorder holds the collectors for one process. Each Recorder has its own
// registry so tests and repeated runs never collide.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	rowsTotal       prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of fetch runs by outcome",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a fetch run in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		rowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_written_total",
				Help:      "Total number of grant rows written to output files",
			},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by status code",
			},
			[]string{"status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),
	}

	r.registry.MustRegister(r.runsTotal, r.runDuration, r.rowsTotal, r.requestsTotal, r.requestDuration)
	return r
}

// ObserveRequest records one HTTP attempt made by the API client.
func (r *Recorder) ObserveRequest(outcome string, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(outcome).Inc()
	r.requestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveRun records the outcome of one fetch run.
func (r *Recorder) ObserveRun(status string, rows int, elapsed time.Duration) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(elapsed.Seconds())
	if rows > 0 {
		r.rowsTotal.Add(float64(rows))
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path, replacing the file atomically.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
