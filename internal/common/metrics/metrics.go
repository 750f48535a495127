// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat requests by pipeline path and outcome",
		},
		[]string{"path", "outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)

	EvidenceSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_source_failures_total",
			Help: "Evidence adapter failures that were degraded to empty results",
		},
		[]string{"source"},
	)

	LegislationCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legislation_cache_lookups_total",
			Help: "Legislation cache lookups by result",
		},
		[]string{"result"},
	)

	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_calls_total",
			Help: "Text generation calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)
)

// ObserveStage records the time elapsed since start for a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func RecordEvidenceFailure(source string) {
	EvidenceSourceFailures.WithLabelValues(source).Inc()
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	LegislationCacheLookups.WithLabelValues(result).Inc()
}

func RecordGeneration(purpose string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	GenerationCalls.WithLabelValues(purpose, outcome).Inc()
}
