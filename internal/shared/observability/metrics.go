package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stacklens_scan_seconds",
		Help:    "Time spent on a scan stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	FilesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stacklens_files_processed_total",
		Help: "Total number of files read and classified.",
	})

	FileErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stacklens_file_errors_total",
		Help: "Total number of files that could not be processed.",
	})

	ProjectsDetected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stacklens_projects_detected",
		Help: "Number of project roots found by the last discovery scan.",
	}, []string{"framework"})

	LinesCounted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stacklens_lines_counted",
		Help: "Line totals of the most recent report.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stacklens_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stacklens_rescans_total",
		Help: "Total number of watch-mode rescans triggered.",
	})

	SnapshotsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stacklens_snapshots_saved_total",
		Help: "Total number of scan snapshots persisted to history.",
	})
)

// RecordReport publishes the line totals of a finished report.
func RecordReport(totalLines, codeLines, commentLines, blankLines int) {
	LinesCounted.WithLabelValues("total").Set(float64(totalLines))
	LinesCounted.WithLabelValues("code").Set(float64(codeLines))
	LinesCounted.WithLabelValues("comment").Set(float64(commentLines))
	LinesCounted.WithLabelValues("blank").Set(float64(blankLines))
}
