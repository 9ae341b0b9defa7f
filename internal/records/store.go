package records

import (
	"context"
	"time"

	id "amlcase/pkg/domain"
)

// Store persists the fact records. Get methods return CodeNotFound when the
// record does not exist; save methods upsert on primary key.
type Store interface {
	SaveCustomer(ctx context.Context, customer Customer) error
	GetCustomer(ctx context.Context, customerID id.CustomerID) (Customer, error)

	SaveTransaction(ctx context.Context, txn Transaction) error
	GetTransaction(ctx context.Context, transactionID id.TransactionID) (Transaction, error)
	LatestTransactionForCustomer(ctx context.Context, customerID id.CustomerID) (Transaction, error)

	SaveEntity(ctx context.Context, entity LegalEntity) error
	GetEntity(ctx context.Context, entityID id.EntityID) (LegalEntity, error)

	AddAssociate(ctx context.Context, link AssociateLink) error
	ListAssociates(ctx context.Context, entityID id.EntityID) ([]AssociateLink, error)

	SaveTraining(ctx context.Context, record TrainingRecord) error
	HasTrainingSince(ctx context.Context, cutoff time.Time) (bool, error)

	SavePolicy(ctx context.Context, doc PolicyDocument) error
	PolicyExists(ctx context.Context) (bool, error)
}
