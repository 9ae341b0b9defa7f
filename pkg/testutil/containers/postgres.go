//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema bootstraps the tables the stores expect. Schema management tooling
// is out of scope; integration tests own their own DDL.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL,
	city TEXT NOT NULL DEFAULT '',
	filer_status TEXT NOT NULL DEFAULT '',
	annual_income DOUBLE PRECISION,
	pep_status TEXT NOT NULL DEFAULT '',
	kyc_complete BOOLEAN NOT NULL DEFAULT FALSE,
	screening_done BOOLEAN NOT NULL DEFAULT FALSE,
	edd_evidence_uploaded BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	customer_id UUID NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	payment_mode TEXT NOT NULL DEFAULT '',
	source_of_funds TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_customer_idx
	ON transactions (customer_id, occurred_at DESC);

CREATE TABLE IF NOT EXISTS legal_entities (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	sector TEXT NOT NULL DEFAULT '',
	has_cross_border BOOLEAN NOT NULL DEFAULT FALSE,
	has_complex_ownership BOOLEAN NOT NULL DEFAULT FALSE,
	has_bearer_shares BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_associates (
	entity_id UUID NOT NULL,
	customer_id UUID,
	role TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS entity_associates_entity_idx
	ON entity_associates (entity_id, created_at);

CREATE TABLE IF NOT EXISTS training_records (
	staff_name TEXT NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_documents (
	title TEXT NOT NULL,
	version TEXT NOT NULL DEFAULT '',
	uploaded_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS customer_assessments (
	id UUID PRIMARY KEY,
	customer_id UUID NOT NULL,
	transaction_id UUID NOT NULL,
	overall_score INT NOT NULL,
	category TEXT NOT NULL,
	result JSONB NOT NULL,
	actor TEXT NOT NULL DEFAULT '',
	assessed_at TIMESTAMPTZ NOT NULL,
	UNIQUE (customer_id, transaction_id)
);

CREATE TABLE IF NOT EXISTS entity_assessments (
	id UUID PRIMARY KEY,
	entity_id UUID NOT NULL,
	score INT NOT NULL,
	band TEXT NOT NULL,
	result JSONB NOT NULL,
	actor TEXT NOT NULL DEFAULT '',
	assessed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS readiness_snapshots (
	customer_id UUID NOT NULL,
	score INT NOT NULL,
	result JSONB NOT NULL,
	actor TEXT NOT NULL DEFAULT '',
	evaluated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS audit_events (
	id UUID PRIMARY KEY,
	category TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	subject TEXT NOT NULL,
	subject_type TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	actor TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT ''
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("amlcase_test"),
		tcpostgres.WithUsername("amlcase"),
		tcpostgres.WithPassword("amlcase"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, DB: db}
	t.Cleanup(func() {
		_ = pc.DB.Close()
		_ = pc.Container.Terminate(context.Background())
	})
	return pc
}

// TruncateTables clears the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", strings.Join(tables, ", ")))
	return err
}
