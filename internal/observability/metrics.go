package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "factcheck"

// Model call stages
const (
	StageVerdict = "verdict"
	StageCounter = "counter"
)

// Metrics holds the pipeline's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	checks        *prometheus.CounterVec
	modelCalls    *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
	verdicts      *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Labels: status (ok, warning, credential_error, service_error), category
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "checks_total",
			Help:      "Claim checks by outcome status and category",
		}, []string{"status", "category"}),

		// Labels: stage (verdict, counter), result (success, error)
		modelCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Language model calls by stage and result",
		}, []string{"stage", "result"}),

		modelDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Language model call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"stage"}),

		// Labels: is_false (true, false)
		verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "verdicts_total",
			Help:      "Classified verdicts",
		}, []string{"is_false"}),
	}
}

// RecordCheck counts a finished check
func (m *Metrics) RecordCheck(status, category string) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(status, category).Inc()
}

// RecordModelCall counts one model call and observes its latency
func (m *Metrics) RecordModelCall(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.modelCalls.WithLabelValues(stage, result).Inc()
	m.modelDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordVerdict counts a classified verdict
func (m *Metrics) RecordVerdict(isFalse bool) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(strconv.FormatBool(isFalse)).Inc()
}
