// Package metrics exports run counters in the Prometheus text format, for
// node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/treehash/treehash/internal/engine"
)

// Metrics holds one registry per process; every run observed into it is
// labeled by mode and root.
type Metrics struct {
	reg *prometheus.Registry

	files     *prometheus.CounterVec
	warnings  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	entries   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	lastRun   *prometheus.GaugeVec
	runStatus *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	labels := []string{"mode", "root"}
	return &Metrics{
		reg: reg,
		files: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treehash_files_processed_total",
			Help: "Files processed by result.",
		}, append(labels, "result")),
		warnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treehash_warnings_total",
			Help: "Warning events reported.",
		}, labels),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treehash_errors_total",
			Help: "Error events reported.",
		}, labels),
		entries: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treehash_ledger_entries",
			Help: "Ledger entries after the last run.",
		}, labels),
		duration: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treehash_run_duration_seconds",
			Help: "Wall time of the last run.",
		}, labels),
		lastRun: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treehash_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}, labels),
		runStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treehash_run_status",
			Help: "Status of the last run: 0 ok, 1 files failed, 2 errors, 3 fatal.",
		}, labels),
	}
}

// Observe records a finished run. A non-nil err marks the run fatal.
func (m *Metrics) Observe(res engine.Result, err error, finished time.Time) {
	mode, root := res.Mode.String(), res.Settings.RootDir
	m.files.WithLabelValues(mode, root, "ok").Add(float64(res.Succeeded))
	m.files.WithLabelValues(mode, root, "failed").Add(float64(res.Failed))
	m.warnings.WithLabelValues(mode, root).Add(float64(res.Warnings))
	m.errors.WithLabelValues(mode, root).Add(float64(res.Errors))
	m.entries.WithLabelValues(mode, root).Set(float64(res.Entries))
	m.duration.WithLabelValues(mode, root).Set(res.Duration.Seconds())
	m.lastRun.WithLabelValues(mode, root).Set(float64(finished.Unix()))
	status := float64(res.Status())
	if err != nil {
		status = 3
	}
	m.runStatus.WithLabelValues(mode, root).Set(status)
}

// WriteFile atomically replaces path with the current metrics.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
