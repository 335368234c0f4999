// Package metrics collects per-run counters for batch commands and exports
// them through the node-exporter textfile collector.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geodata"

// Run holds the metrics of one command invocation in a private registry, so
// repeated runs in one process never share state.
type Run struct {
	registry *prometheus.Registry

	rowsEmitted   *prometheus.CounterVec
	rowsDropped   *prometheus.CounterVec
	artifactBytes *prometheus.GaugeVec
	runInfo       *prometheus.GaugeVec
	duration      *prometheus.GaugeVec
	lastSuccess   *prometheus.GaugeVec
}

func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		rowsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_emitted_total",
			Help:      "Rows written to generated artifacts, by level.",
		}, []string{"level"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Input rows excluded from the hierarchy, by level and reason.",
		}, []string{"level", "reason"}),
		artifactBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_size_bytes",
			Help:      "Size of each artifact written by the last run.",
		}, []string{"artifact"}),
		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_info",
			Help:      "Outcome of the last run (always 1).",
		}, []string{"command", "mode", "status"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}, []string{"command"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}, []string{"command"}),
	}
	r.registry.MustRegister(r.rowsEmitted, r.rowsDropped, r.artifactBytes, r.runInfo, r.duration, r.lastSuccess)
	return r
}

func (r *Run) RowsEmitted(level string, n int) {
	r.rowsEmitted.WithLabelValues(level).Add(float64(n))
}

func (r *Run) RowsDropped(level, reason string, n int) {
	r.rowsDropped.WithLabelValues(level, reason).Add(float64(n))
}

func (r *Run) Artifact(name string, size int64) {
	r.artifactBytes.WithLabelValues(name).Set(float64(size))
}

// Finish records the run outcome. Status "ok" and "missing" both count as
// success; anything else does not touch the success timestamp.
func (r *Run) Finish(command, mode, status string, elapsed time.Duration) {
	r.runInfo.WithLabelValues(command, mode, status).Set(1)
	r.duration.WithLabelValues(command).Set(elapsed.Seconds())
	if status == "ok" || status == "missing" {
		r.lastSuccess.WithLabelValues(command).SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in text exposition format. It is a
// no-op when path is empty.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir for metrics %s", path)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}
