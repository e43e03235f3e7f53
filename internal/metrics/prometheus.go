// Package metrics exposes Prometheus instrumentation for the splitting
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// Metrics contains all Prometheus metrics for the splitter service
type Metrics struct {
	// Pipeline metrics
	PipelinesStarted   prometheus.Counter
	PipelinesNoSplit   prometheus.Counter
	PipelinesCompleted prometheus.Counter
	PipelinesFailed    *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram

	// Segment metrics
	SegmentsPublished prometheus.Counter
	SourceDuration    prometheus.Histogram

	// Dispatch metrics
	DispatchSubmissions *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		PipelinesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitter_pipelines_started_total",
			Help: "Total number of pipeline invocations started",
		}),
		PipelinesNoSplit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitter_pipelines_no_split_total",
			Help: "Total number of invocations that needed no split",
		}),
		PipelinesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitter_pipelines_completed_total",
			Help: "Total number of invocations that completed a split",
		}),
		PipelinesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "splitter_pipelines_failed_total",
			Help: "Total number of failed invocations by failure kind",
		}, []string{"kind"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitter_pipeline_duration_seconds",
			Help:    "Wall-clock duration of pipeline invocations",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),
		SegmentsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitter_segments_published_total",
			Help: "Total number of segments written back to storage",
		}),
		SourceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitter_source_duration_seconds",
			Help:    "Probed duration of source recordings",
			Buckets: prometheus.ExponentialBuckets(60, 2, 12), // 1 minute to ~68 hours
		}),
		DispatchSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "splitter_dispatch_submissions_total",
			Help: "Total number of transcription submissions by status",
		}, []string{"status"}),
	}
}

// RecordResult records the outcome of one pipeline invocation
func (m *Metrics) RecordResult(status, failureKind string, durationSeconds float64) {
	m.PipelineDuration.Observe(durationSeconds)
	switch status {
	case types.StatusNoSplitNeeded:
		m.PipelinesNoSplit.Inc()
	case types.StatusSplitComplete:
		m.PipelinesCompleted.Inc()
	case types.StatusFailed:
		m.PipelinesFailed.WithLabelValues(failureKind).Inc()
	}
}

// RecordSegmentPublished increments the published segments counter
func (m *Metrics) RecordSegmentPublished() {
	m.SegmentsPublished.Inc()
}

// RecordSourceDuration records the probed duration of a source recording
func (m *Metrics) RecordSourceDuration(seconds float64) {
	m.SourceDuration.Observe(seconds)
}

// RecordDispatch records one transcription submission outcome
func (m *Metrics) RecordDispatch(status string) {
	m.DispatchSubmissions.WithLabelValues(status).Inc()
}
