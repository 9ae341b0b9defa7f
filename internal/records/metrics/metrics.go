package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for record intake.
type Metrics struct {
	// Records written, by kind: customer, transaction, entity, associate,
	// training, policy
	RecordsSaved *prometheus.CounterVec

	// Intake requests rejected at validation, by kind
	IntakeRejected *prometheus.CounterVec
}

// New creates a Metrics instance with all record intake metrics registered.
func New() *Metrics {
	return &Metrics{
		RecordsSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlcase_records_saved_total",
			Help: "Total fact records saved by kind",
		}, []string{"kind"}),

		IntakeRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlcase_records_intake_rejected_total",
			Help: "Total intake requests rejected at validation by kind",
		}, []string{"kind"}),
	}
}

// IncSaved records one persisted fact record.
func (m *Metrics) IncSaved(kind string) {
	if m != nil {
		m.RecordsSaved.WithLabelValues(kind).Inc()
	}
}

// IncRejected records one rejected intake request.
func (m *Metrics) IncRejected(kind string) {
	if m != nil {
		m.IntakeRejected.WithLabelValues(kind).Inc()
	}
}
