// Package metrics defines the build counters exported after each run and on
// the preview server.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Navigation metrics
var (
	NavNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "expose_nav_nodes",
			Help: "Number of navigation nodes found in the last tree scan",
		},
		[]string{"kind"},
	)

	WalkErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expose_walk_errors_total",
			Help: "Directories skipped because they could not be read",
		},
	)
)

// Scanner metrics
var (
	ItemsScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expose_items_scanned_total",
			Help: "Gallery items produced by the item scanner",
		},
		[]string{"kind"},
	)

	FilesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expose_files_skipped_total",
			Help: "Directory entries the item scanner did not turn into gallery items",
		},
		[]string{"reason"},
	)
)

// Render metrics
var (
	PagesRenderedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expose_pages_rendered_total",
			Help: "HTML pages written, including the landing page",
		},
	)
)

// Encoder metrics
var (
	EncodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expose_encodes_total",
			Help: "Output artifacts by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	EncodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "expose_encode_duration_seconds",
			Help:    "Duration of external encode invocations",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"kind"},
	)
)

// Build metrics
var (
	BuildDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "expose_last_build_duration_seconds",
			Help: "Duration of the last build in seconds",
		},
	)

	BuildTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "expose_last_build_timestamp",
			Help: "Timestamp of the last completed build",
		},
	)
)

// Encode outcomes used as the status label of EncodesTotal
const (
	StatusDone    = "done"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
