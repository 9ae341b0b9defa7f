// Package records holds the facts the scoring and readiness layers read:
// customer profiles, transactions, legal entities and their associates,
// training completions, and policy documents. Intake is append-mostly;
// profiles upsert on ID.
package records

import (
	"time"

	id "amlcase/pkg/domain"
)

// Customer is a natural person's compliance profile. Scoring fields are
// free-form strings on purpose: the scorer downgrades unrecognized values to
// defaults rather than rejecting them at intake.
type Customer struct {
	ID           id.CustomerID
	FullName     string
	City         string
	FilerStatus  string
	AnnualIncome *float64
	PEPStatus    string

	// Evidence flags read by the readiness checklist.
	KYCComplete         bool
	ScreeningDone       bool
	EDDEvidenceUploaded bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is one recorded movement of funds for a customer.
type Transaction struct {
	ID            id.TransactionID
	CustomerID    id.CustomerID
	Amount        float64
	PaymentMode   string
	SourceOfFunds string
	OccurredAt    time.Time
	CreatedAt     time.Time
}

// LegalEntity is a legal person (company, partnership, trust) with the
// complexity indicators the entity scorer reads.
type LegalEntity struct {
	ID                  id.EntityID
	Name                string
	Sector              string
	HasCrossBorder      bool
	HasComplexOwnership bool
	HasBearerShares     bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AssociateLink ties an owner or controller to a legal entity. CustomerID is
// nil when the associate has no customer record; the entity scorer assigns
// such associates the default risk.
type AssociateLink struct {
	EntityID   id.EntityID
	CustomerID id.CustomerID
	Role       string
	CreatedAt  time.Time
}

// TrainingRecord captures one AML/CFT training completion. The readiness
// checklist only asks whether any completion falls within the recency window.
type TrainingRecord struct {
	StaffName   string
	CompletedAt time.Time
	CreatedAt   time.Time
}

// PolicyDocument is metadata for an AML/CFT policy on file. Existence of at
// least one document satisfies the policy checklist item.
type PolicyDocument struct {
	Title      string
	Version    string
	UploadedAt time.Time
}
