// Package assessment orchestrates the pure scorers against stored facts and
// persists the results. The scorers never fail; everything that can go wrong
// here is a precondition (missing record) or infrastructure (store, audit).
package assessment

import (
	"time"

	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
)

// CustomerAssessment is a persisted customer risk result. At most one row
// exists per (customer, transaction) pair; re-evaluating the same pair
// replaces the stored result.
type CustomerAssessment struct {
	ID            id.AssessmentID
	CustomerID    id.CustomerID
	TransactionID id.TransactionID
	Result        scoring.RiskResult
	Actor         string
	AssessedAt    time.Time
}

// EntityAssessment is a persisted legal-entity risk result, one per
// evaluation; Latest queries return the most recent.
type EntityAssessment struct {
	ID         id.AssessmentID
	EntityID   id.EntityID
	Result     scoring.EntityRiskResult
	Actor      string
	AssessedAt time.Time
}
