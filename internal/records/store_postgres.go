package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	txcontext "amlcase/pkg/platform/tx"
)

// PostgresStore persists fact records in PostgreSQL. Profile saves upsert on
// the primary key so repeated intake of the same record is idempotent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) SaveCustomer(ctx context.Context, customer Customer) error {
	query := `
		INSERT INTO customers (
			id, full_name, city, filer_status, annual_income, pep_status,
			kyc_complete, screening_done, edd_evidence_uploaded,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			city = EXCLUDED.city,
			filer_status = EXCLUDED.filer_status,
			annual_income = EXCLUDED.annual_income,
			pep_status = EXCLUDED.pep_status,
			kyc_complete = EXCLUDED.kyc_complete,
			screening_done = EXCLUDED.screening_done,
			edd_evidence_uploaded = EXCLUDED.edd_evidence_uploaded,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(customer.ID),
		customer.FullName,
		customer.City,
		customer.FilerStatus,
		customer.AnnualIncome,
		customer.PEPStatus,
		customer.KYCComplete,
		customer.ScreeningDone,
		customer.EDDEvidenceUploaded,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCustomer(ctx context.Context, customerID id.CustomerID) (Customer, error) {
	query := `
		SELECT id, full_name, city, filer_status, annual_income, pep_status,
		       kyc_complete, screening_done, edd_evidence_uploaded,
		       created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	var (
		customer Customer
		rawID    uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(customerID)).Scan(
		&rawID,
		&customer.FullName,
		&customer.City,
		&customer.FilerStatus,
		&customer.AnnualIncome,
		&customer.PEPStatus,
		&customer.KYCComplete,
		&customer.ScreeningDone,
		&customer.EDDEvidenceUploaded,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, dErrors.New(dErrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return Customer{}, fmt.Errorf("query customer: %w", err)
	}
	customer.ID = id.CustomerID(rawID)
	return customer, nil
}

func (s *PostgresStore) SaveTransaction(ctx context.Context, txn Transaction) error {
	query := `
		INSERT INTO transactions (
			id, customer_id, amount, payment_mode, source_of_funds,
			occurred_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(txn.ID),
		uuid.UUID(txn.CustomerID),
		txn.Amount,
		txn.PaymentMode,
		txn.SourceOfFunds,
		txn.OccurredAt,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, transactionID id.TransactionID) (Transaction, error) {
	query := `
		SELECT id, customer_id, amount, payment_mode, source_of_funds,
		       occurred_at, created_at
		FROM transactions
		WHERE id = $1
	`
	return s.scanTransaction(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(transactionID)), "transaction not found")
}

func (s *PostgresStore) LatestTransactionForCustomer(ctx context.Context, customerID id.CustomerID) (Transaction, error) {
	query := `
		SELECT id, customer_id, amount, payment_mode, source_of_funds,
		       occurred_at, created_at
		FROM transactions
		WHERE customer_id = $1
		ORDER BY occurred_at DESC
		LIMIT 1
	`
	return s.scanTransaction(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(customerID)), "no transaction for customer")
}

func (s *PostgresStore) scanTransaction(row *sql.Row, missing string) (Transaction, error) {
	var (
		txn        Transaction
		rawID      uuid.UUID
		customerID uuid.UUID
	)
	err := row.Scan(
		&rawID,
		&customerID,
		&txn.Amount,
		&txn.PaymentMode,
		&txn.SourceOfFunds,
		&txn.OccurredAt,
		&txn.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, dErrors.New(dErrors.CodeNotFound, missing)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("query transaction: %w", err)
	}
	txn.ID = id.TransactionID(rawID)
	txn.CustomerID = id.CustomerID(customerID)
	return txn, nil
}

func (s *PostgresStore) SaveEntity(ctx context.Context, entity LegalEntity) error {
	query := `
		INSERT INTO legal_entities (
			id, name, sector, has_cross_border, has_complex_ownership,
			has_bearer_shares, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			has_cross_border = EXCLUDED.has_cross_border,
			has_complex_ownership = EXCLUDED.has_complex_ownership,
			has_bearer_shares = EXCLUDED.has_bearer_shares,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entity.ID),
		entity.Name,
		entity.Sector,
		entity.HasCrossBorder,
		entity.HasComplexOwnership,
		entity.HasBearerShares,
		entity.CreatedAt,
		entity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEntity(ctx context.Context, entityID id.EntityID) (LegalEntity, error) {
	query := `
		SELECT id, name, sector, has_cross_border, has_complex_ownership,
		       has_bearer_shares, created_at, updated_at
		FROM legal_entities
		WHERE id = $1
	`
	var (
		entity LegalEntity
		rawID  uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(entityID)).Scan(
		&rawID,
		&entity.Name,
		&entity.Sector,
		&entity.HasCrossBorder,
		&entity.HasComplexOwnership,
		&entity.HasBearerShares,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return LegalEntity{}, dErrors.New(dErrors.CodeNotFound, "entity not found")
	}
	if err != nil {
		return LegalEntity{}, fmt.Errorf("query entity: %w", err)
	}
	entity.ID = id.EntityID(rawID)
	return entity, nil
}

func (s *PostgresStore) AddAssociate(ctx context.Context, link AssociateLink) error {
	// NULL customer_id means the associate has no customer record.
	var customerID *uuid.UUID
	if !link.CustomerID.IsNil() {
		raw := uuid.UUID(link.CustomerID)
		customerID = &raw
	}

	query := `
		INSERT INTO entity_associates (entity_id, customer_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(link.EntityID),
		customerID,
		link.Role,
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert associate: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAssociates(ctx context.Context, entityID id.EntityID) ([]AssociateLink, error) {
	query := `
		SELECT entity_id, customer_id, role, created_at
		FROM entity_associates
		WHERE entity_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("query associates: %w", err)
	}
	defer rows.Close()

	var links []AssociateLink
	for rows.Next() {
		var (
			link       AssociateLink
			rawEntity  uuid.UUID
			customerID *uuid.UUID
		)
		if err := rows.Scan(&rawEntity, &customerID, &link.Role, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan associate: %w", err)
		}
		link.EntityID = id.EntityID(rawEntity)
		if customerID != nil {
			link.CustomerID = id.CustomerID(*customerID)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associates: %w", err)
	}
	return links, nil
}

func (s *PostgresStore) SaveTraining(ctx context.Context, record TrainingRecord) error {
	query := `
		INSERT INTO training_records (staff_name, completed_at, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.StaffName,
		record.CompletedAt,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert training record: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasTrainingSince(ctx context.Context, cutoff time.Time) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM training_records WHERE completed_at >= $1)`,
		cutoff,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query training recency: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) SavePolicy(ctx context.Context, doc PolicyDocument) error {
	query := `
		INSERT INTO policy_documents (title, version, uploaded_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		doc.Title,
		doc.Version,
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert policy document: %w", err)
	}
	return nil
}

func (s *PostgresStore) PolicyExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM policy_documents)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query policy existence: %w", err)
	}
	return exists, nil
}
