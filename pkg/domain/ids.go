// Package domain holds the typed identifiers and shared enums used across
// services and stores. IDs are distinct types over uuid.UUID so the compiler
// rejects cross-type assignment between, say, a customer and an entity.
package domain

import (
	"github.com/google/uuid"

	dErrors "amlcase/pkg/domain-errors"
)

// CustomerID identifies a natural-person customer.
type CustomerID uuid.UUID

// TransactionID identifies a recorded transaction.
type TransactionID uuid.UUID

// EntityID identifies a legal person (company, partnership, trust).
type EntityID uuid.UUID

// AssessmentID identifies a persisted risk assessment.
type AssessmentID uuid.UUID

func (id CustomerID) String() string    { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id EntityID) String() string      { return uuid.UUID(id).String() }
func (id AssessmentID) String() string  { return uuid.UUID(id).String() }

func (id CustomerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TransactionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EntityID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AssessmentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewCustomerID returns a fresh random customer ID.
func NewCustomerID() CustomerID { return CustomerID(uuid.New()) }

// NewTransactionID returns a fresh random transaction ID.
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }

// NewEntityID returns a fresh random entity ID.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewAssessmentID returns a fresh random assessment ID.
func NewAssessmentID() AssessmentID { return AssessmentID(uuid.New()) }

// parseUUID enforces the trust-boundary invariant: IDs must be valid,
// non-nil UUIDs. Empty strings and uuid.Nil are rejected so a zero value can
// never masquerade as a real identifier.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return parsed, nil
}

// ParseCustomerID parses and validates a customer ID from its string form.
func ParseCustomerID(raw string) (CustomerID, error) {
	parsed, err := parseUUID(raw, "customer")
	return CustomerID(parsed), err
}

// ParseTransactionID parses and validates a transaction ID from its string form.
func ParseTransactionID(raw string) (TransactionID, error) {
	parsed, err := parseUUID(raw, "transaction")
	return TransactionID(parsed), err
}

// ParseEntityID parses and validates an entity ID from its string form.
func ParseEntityID(raw string) (EntityID, error) {
	parsed, err := parseUUID(raw, "entity")
	return EntityID(parsed), err
}
