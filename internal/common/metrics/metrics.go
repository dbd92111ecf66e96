// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// ExtractionOutcomes counts extraction attempts by record variant and the
	// bucket they ended in (ok, no_match, incomplete, parse_failure,
	// shape_mismatch).
	ExtractionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_outcomes_total",
			Help: "Extraction attempts by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	PointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points booked to user ledgers",
		},
	)

	ImageCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_cache_requests_total",
			Help: "Destination image lookups by result",
		},
		[]string{"result"},
	)
)

func RecordExtraction(variant, outcome string) {
	ExtractionOutcomes.WithLabelValues(variant, outcome).Inc()
}
