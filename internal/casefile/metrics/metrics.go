package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for readiness evaluations.
type Metrics struct {
	// Evaluations by summary band: strong, adequate, attention
	Evaluations *prometheus.CounterVec

	// Distribution of readiness scores
	Scores prometheus.Histogram
}

// New creates a Metrics instance with all casefile metrics registered.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlcase_readiness_evaluations_total",
			Help: "Total readiness evaluations by summary band",
		}, []string{"summary"}),

		Scores: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "amlcase_readiness_score",
			Help:    "Distribution of readiness scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

// ObserveEvaluation records one readiness evaluation outcome.
func (m *Metrics) ObserveEvaluation(summary string, score int) {
	if m != nil {
		m.Evaluations.WithLabelValues(summary).Inc()
		m.Scores.Observe(float64(score))
	}
}
