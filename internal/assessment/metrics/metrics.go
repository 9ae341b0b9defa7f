package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assessment module.
type Metrics struct {
	// Customer evaluations by resulting category
	CustomerEvaluations *prometheus.CounterVec

	// Entity evaluations by resulting band
	EntityEvaluations *prometheus.CounterVec

	// Full evaluation latency by kind: customer, entity
	EvaluateLatency *prometheus.HistogramVec

	// Associate score cache lookups by outcome: hit, miss
	ScoreCacheLookups *prometheus.CounterVec
}

// New creates a Metrics instance with all assessment metrics registered.
func New() *Metrics {
	return &Metrics{
		CustomerEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlcase_customer_evaluations_total",
			Help: "Total customer risk evaluations by resulting category",
		}, []string{"category"}),

		EntityEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlcase_entity_evaluations_total",
			Help: "Total legal-entity risk evaluations by resulting band",
		}, []string{"band"}),

		EvaluateLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amlcase_evaluate_duration_seconds",
			Help:    "Duration of full risk evaluations including persistence and audit",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),

		ScoreCacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlcase_score_cache_lookups_total",
			Help: "Associate score cache lookups by outcome",
		}, []string{"outcome"}),
	}
}

// IncCustomerEvaluation records one customer evaluation outcome.
func (m *Metrics) IncCustomerEvaluation(category string) {
	if m != nil {
		m.CustomerEvaluations.WithLabelValues(category).Inc()
	}
}

// IncEntityEvaluation records one entity evaluation outcome.
func (m *Metrics) IncEntityEvaluation(band string) {
	if m != nil {
		m.EntityEvaluations.WithLabelValues(band).Inc()
	}
}

// ObserveEvaluateLatency records the duration of a full evaluation.
func (m *Metrics) ObserveEvaluateLatency(kind string, d time.Duration) {
	if m != nil {
		m.EvaluateLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncCacheLookup records one score cache lookup outcome.
func (m *Metrics) IncCacheLookup(outcome string) {
	if m != nil {
		m.ScoreCacheLookups.WithLabelValues(outcome).Inc()
	}
}
