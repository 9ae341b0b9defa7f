package casefile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"amlcase/internal/readiness"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	txcontext "amlcase/pkg/platform/tx"
)

// PostgresStore persists readiness snapshots, checklist as JSONB.
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

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snapshot Snapshot) error {
	result, err := json.Marshal(snapshot.Result)
	if err != nil {
		return fmt.Errorf("marshal readiness result: %w", err)
	}

	query := `
		INSERT INTO readiness_snapshots (customer_id, score, result, actor, evaluated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(snapshot.CustomerID),
		snapshot.Result.Score,
		result,
		snapshot.Actor,
		snapshot.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert readiness snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, customerID id.CustomerID) (Snapshot, error) {
	query := `
		SELECT customer_id, result, actor, evaluated_at
		FROM readiness_snapshots
		WHERE customer_id = $1
		ORDER BY evaluated_at DESC
		LIMIT 1
	`
	var (
		snapshot      Snapshot
		rawCustomer   uuid.UUID
		resultPayload []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(customerID)).Scan(
		&rawCustomer,
		&resultPayload,
		&snapshot.Actor,
		&snapshot.EvaluatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, dErrors.New(dErrors.CodeNotFound, "no readiness snapshot for customer")
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query readiness snapshot: %w", err)
	}

	var result readiness.Result
	if err := json.Unmarshal(resultPayload, &result); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal readiness result: %w", err)
	}

	snapshot.CustomerID = id.CustomerID(rawCustomer)
	snapshot.Result = result
	return snapshot, nil
}
