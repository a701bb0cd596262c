package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's instrumentation. All vectors are registered
// against the registry passed to New, so tests can use isolated registries.
type Metrics struct {
	eventsProcessed    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	priorityLevels     *prometheus.CounterVec
	pipelineDuration   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "events_processed_total",
			Help:      "Events processed by outcome",
		}, []string{"outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "validation_failures_total",
			Help:      "Validation failures by reason",
		}, []string{"reason"}),
		priorityLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "priority_levels_total",
			Help:      "Classified events by priority level",
		}, []string{"level"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "triage",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent processing a single event end to end",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.eventsProcessed, m.validationFailures, m.priorityLevels, m.pipelineDuration)
	return m
}

func (m *Metrics) ObserveProcessed(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObservePriority(level string) {
	if m == nil {
		return
	}
	m.priorityLevels.WithLabelValues(level).Inc()
}
