package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	txcontext "amlcase/pkg/platform/tx"
)

// PostgresStore implements Store using the transactional outbox pattern.
// Events are written to the outbox table in the same transaction as the
// business write and shipped to Kafka by the outbox relay; Kafka is the
// durable downstream for audit events.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL audit store that writes to the outbox.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// Event for proper deserialization by downstream consumers.
type outboxPayload struct {
	ID          string `json:"ID"`
	Category    string `json:"Category"`
	Timestamp   string `json:"Timestamp"`
	Subject     string `json:"Subject"`
	SubjectType string `json:"SubjectType,omitempty"`
	Action      string `json:"Action"`
	Actor       string `json:"Actor,omitempty"`
	Outcome     string `json:"Outcome,omitempty"`
	Reason      string `json:"Reason,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:          eventID.String(),
		Category:    string(event.Category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Subject:     event.Subject,
		SubjectType: event.SubjectType,
		Action:      event.Action,
		Actor:       event.Actor,
		Outcome:     event.Outcome,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := event.SubjectType
	if aggregateType == "" {
		aggregateType = "audit"
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(), // outbox entry ID
		aggregateType,
		event.Subject,
		event.Action,
		payloadBytes,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	// Materialize into audit_events in the same unit of work so local
	// queries don't wait on the Kafka round trip.
	return s.appendMaterialized(ctx, eventID, event)
}

func (s *PostgresStore) appendMaterialized(ctx context.Context, eventID uuid.UUID, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, subject, subject_type, action,
			actor, outcome, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		event.Subject,
		event.SubjectType,
		event.Action,
		event.Actor,
		event.Outcome,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns materialized events for a subject, oldest first.
func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	query := `
		SELECT category, timestamp, subject, subject_type, action,
		       actor, outcome, reason, request_id
		FROM audit_events
		WHERE subject = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var category string
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.Subject,
			&event.SubjectType,
			&event.Action,
			&event.Actor,
			&event.Outcome,
			&event.Reason,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
