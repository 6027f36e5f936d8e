package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records counters for envelope lifecycle transitions and the
// outbox publisher loop.
type WorkflowMetrics struct {
	transitions      *prometheus.CounterVec
	publishedEvents  *prometheus.CounterVec
	publishFailures  *prometheus.CounterVec
	publishBatchTime prometheus.Histogram
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "envelope_transitions_total",
		Help: "Envelope status transitions by target status.",
	}, []string{"status"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to Pub/Sub by event type.",
	}, []string{"event_type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed by event type.",
	}, []string{"event_type"})
	batchTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_batch_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(transitions, published, failures, batchTime)
	return &WorkflowMetrics{
		transitions:      transitions,
		publishedEvents:  published,
		publishFailures:  failures,
		publishBatchTime: batchTime,
	}
}

// IncTransition increments the transition counter for the given target status.
func (m *WorkflowMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPublished increments the published counter for the given event type.
func (m *WorkflowMetrics) IncPublished(eventType string) {
	if m == nil || m.publishedEvents == nil {
		return
	}
	m.publishedEvents.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncPublishFailure increments the failure counter for the given event type.
func (m *WorkflowMetrics) IncPublishFailure(eventType string) {
	if m == nil || m.publishFailures == nil {
		return
	}
	m.publishFailures.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveBatch records the duration of a publish batch.
func (m *WorkflowMetrics) ObserveBatch(duration time.Duration) {
	if m == nil || m.publishBatchTime == nil {
		return
	}
	m.publishBatchTime.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
