// Package casefile assembles the inspection-readiness picture for one
// customer case: it gathers the evidence facts, resolves the saved risk band,
// applies the training recency window, and persists the evaluated checklist.
package casefile

import (
	"time"

	"amlcase/internal/readiness"
	id "amlcase/pkg/domain"
)

// TrainingRecencyWindow is how far back a training completion still counts as
// evidence of a trained staff.
const TrainingRecencyWindow = 365 * 24 * time.Hour

// Snapshot is a persisted readiness evaluation for a customer case.
type Snapshot struct {
	CustomerID  id.CustomerID
	Result      readiness.Result
	Actor       string
	EvaluatedAt time.Time
}
