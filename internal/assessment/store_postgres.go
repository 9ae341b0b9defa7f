package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	txcontext "amlcase/pkg/platform/tx"
)

// PostgresStore persists assessments. Scorer results are stored as JSONB:
// the breakdown and explainability shapes are owned by the scoring package
// and queries never reach into them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) UpsertCustomerAssessment(ctx context.Context, assessment CustomerAssessment) error {
	result, err := json.Marshal(assessment.Result)
	if err != nil {
		return fmt.Errorf("marshal risk result: %w", err)
	}

	query := `
		INSERT INTO customer_assessments (
			id, customer_id, transaction_id, overall_score, category,
			result, actor, assessed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id, transaction_id) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			category = EXCLUDED.category,
			result = EXCLUDED.result,
			actor = EXCLUDED.actor,
			assessed_at = EXCLUDED.assessed_at
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(assessment.ID),
		uuid.UUID(assessment.CustomerID),
		uuid.UUID(assessment.TransactionID),
		assessment.Result.OverallScore,
		string(assessment.Result.Category),
		result,
		assessment.Actor,
		assessment.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert customer assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestCustomerAssessment(ctx context.Context, customerID id.CustomerID) (CustomerAssessment, error) {
	query := `
		SELECT id, customer_id, transaction_id, result, actor, assessed_at
		FROM customer_assessments
		WHERE customer_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`
	var (
		assessment    CustomerAssessment
		rawID         uuid.UUID
		rawCustomer   uuid.UUID
		rawTxn        uuid.UUID
		resultPayload []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(customerID)).Scan(
		&rawID,
		&rawCustomer,
		&rawTxn,
		&resultPayload,
		&assessment.Actor,
		&assessment.AssessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CustomerAssessment{}, dErrors.New(dErrors.CodeNotFound, "no assessment for customer")
	}
	if err != nil {
		return CustomerAssessment{}, fmt.Errorf("query customer assessment: %w", err)
	}

	var result scoring.RiskResult
	if err := json.Unmarshal(resultPayload, &result); err != nil {
		return CustomerAssessment{}, fmt.Errorf("unmarshal risk result: %w", err)
	}

	assessment.ID = id.AssessmentID(rawID)
	assessment.CustomerID = id.CustomerID(rawCustomer)
	assessment.TransactionID = id.TransactionID(rawTxn)
	assessment.Result = result
	return assessment, nil
}

func (s *PostgresStore) SaveEntityAssessment(ctx context.Context, assessment EntityAssessment) error {
	result, err := json.Marshal(assessment.Result)
	if err != nil {
		return fmt.Errorf("marshal entity risk result: %w", err)
	}

	query := `
		INSERT INTO entity_assessments (
			id, entity_id, score, band, result, actor, assessed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(assessment.ID),
		uuid.UUID(assessment.EntityID),
		assessment.Result.Score,
		string(assessment.Result.Band),
		result,
		assessment.Actor,
		assessment.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entity assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestEntityAssessment(ctx context.Context, entityID id.EntityID) (EntityAssessment, error) {
	query := `
		SELECT id, entity_id, result, actor, assessed_at
		FROM entity_assessments
		WHERE entity_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`
	var (
		assessment    EntityAssessment
		rawID         uuid.UUID
		rawEntity     uuid.UUID
		resultPayload []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(entityID)).Scan(
		&rawID,
		&rawEntity,
		&resultPayload,
		&assessment.Actor,
		&assessment.AssessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return EntityAssessment{}, dErrors.New(dErrors.CodeNotFound, "no assessment for entity")
	}
	if err != nil {
		return EntityAssessment{}, fmt.Errorf("query entity assessment: %w", err)
	}

	var result scoring.EntityRiskResult
	if err := json.Unmarshal(resultPayload, &result); err != nil {
		return EntityAssessment{}, fmt.Errorf("unmarshal entity risk result: %w", err)
	}

	assessment.ID = id.AssessmentID(rawID)
	assessment.EntityID = id.EntityID(rawEntity)
	assessment.Result = result
	return assessment, nil
}
