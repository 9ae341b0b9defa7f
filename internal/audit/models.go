// Package audit captures the structured events regulators expect this system
// to retain: who evaluated what, when, and with what outcome. Events are
// transport-agnostic so stores and sinks can fan out.
package audit

import "time"

// EventCategory classifies audit events by their primary purpose. The
// category drives retention policy and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// risk assessments, readiness evaluations. Tamper-proof storage, long
	// retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring, such
	// as rejected tokens on sensitive endpoints.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging:
	// record intake, queries. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory
	Timestamp time.Time

	// Subject identifies what the action applied to (customer, entity, or
	// case ID in string form).
	Subject string

	// SubjectType distinguishes customer/entity/transaction subjects.
	SubjectType string

	// Action is the AuditEvent value that occurred.
	Action string

	// Actor is the authenticated user or service account that triggered the
	// action.
	Actor string

	// Outcome summarizes the result where one exists (risk category, band,
	// readiness score).
	Outcome string

	// Reason carries supporting detail (top explainability line, red flag
	// summary).
	Reason string

	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// AuditEvent enumerates the actions this system records.
type AuditEvent string

const (
	// Assessment events
	EventCustomerRiskAssessed AuditEvent = "customer_risk_assessed"
	EventEntityRiskAssessed   AuditEvent = "entity_risk_assessed"
	EventReadinessEvaluated   AuditEvent = "readiness_evaluated"

	// Record intake events
	EventCustomerRecorded    AuditEvent = "customer_recorded"
	EventTransactionRecorded AuditEvent = "transaction_recorded"
	EventEntityRecorded      AuditEvent = "entity_recorded"
	EventAssociateLinked     AuditEvent = "associate_linked"
	EventTrainingRecorded    AuditEvent = "training_recorded"
	EventPolicyRecorded      AuditEvent = "policy_recorded"
)

// eventCategories maps each audit event to its category. Assessments carry
// regulatory weight; record intake is operational visibility.
var eventCategories = map[AuditEvent]EventCategory{
	EventCustomerRiskAssessed: CategoryCompliance,
	EventEntityRiskAssessed:   CategoryCompliance,
	EventReadinessEvaluated:   CategoryCompliance,

	EventCustomerRecorded:    CategoryOperations,
	EventTransactionRecorded: CategoryOperations,
	EventEntityRecorded:      CategoryOperations,
	EventAssociateLinked:     CategoryOperations,
	EventTrainingRecorded:    CategoryOperations,
	EventPolicyRecorded:      CategoryOperations,
}

// Category returns the event's category, defaulting to operations for
// unmapped actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if category, ok := eventCategories[e]; ok {
		return category
	}
	return CategoryOperations
}
