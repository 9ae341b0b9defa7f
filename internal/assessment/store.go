package assessment

import (
	"context"

	id "amlcase/pkg/domain"
)

// Store persists assessments. Latest queries return CodeNotFound when no
// assessment exists for the subject.
type Store interface {
	// UpsertCustomerAssessment inserts or replaces the assessment for the
	// (customer, transaction) pair.
	UpsertCustomerAssessment(ctx context.Context, assessment CustomerAssessment) error

	// LatestCustomerAssessment returns the most recently saved assessment for
	// the customer across all transactions.
	LatestCustomerAssessment(ctx context.Context, customerID id.CustomerID) (CustomerAssessment, error)

	SaveEntityAssessment(ctx context.Context, assessment EntityAssessment) error
	LatestEntityAssessment(ctx context.Context, entityID id.EntityID) (EntityAssessment, error)
}
