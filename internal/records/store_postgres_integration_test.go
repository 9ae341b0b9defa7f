//go:build integration

package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"amlcase/internal/records"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	txcontext "amlcase/pkg/platform/tx"
	"amlcase/pkg/testutil/containers"
)

type RecordsPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *records.PostgresStore
}

func TestRecordsPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RecordsPostgresSuite))
}

func (s *RecordsPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = records.NewPostgresStore(s.postgres.DB)
}

func (s *RecordsPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"customers", "transactions", "legal_entities", "entity_associates",
		"training_records", "policy_documents",
	)
	s.Require().NoError(err)
}

func (s *RecordsPostgresSuite) TestCustomerRoundTripAndUpsert() {
	ctx := context.Background()
	income := 900000.0
	now := time.Now().UTC().Truncate(time.Microsecond)

	customer := records.Customer{
		ID:           id.NewCustomerID(),
		FullName:     "Round Trip",
		City:         "Quetta",
		FilerStatus:  "non-filer",
		AnnualIncome: &income,
		PEPStatus:    "family",
		KYCComplete:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.store.SaveCustomer(ctx, customer))

	loaded, err := s.store.GetCustomer(ctx, customer.ID)
	s.Require().NoError(err)
	s.Equal(customer.FullName, loaded.FullName)
	s.Equal(customer.City, loaded.City)
	s.Require().NotNil(loaded.AnnualIncome)
	s.Equal(income, *loaded.AnnualIncome)
	s.True(loaded.KYCComplete)

	// Upsert replaces profile fields.
	customer.FilerStatus = "filer"
	customer.ScreeningDone = true
	s.Require().NoError(s.store.SaveCustomer(ctx, customer))

	loaded, err = s.store.GetCustomer(ctx, customer.ID)
	s.Require().NoError(err)
	s.Equal("filer", loaded.FilerStatus)
	s.True(loaded.ScreeningDone)
}

func (s *RecordsPostgresSuite) TestGetCustomer_NotFound() {
	_, err := s.store.GetCustomer(context.Background(), id.NewCustomerID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RecordsPostgresSuite) TestLatestTransactionOrdering() {
	ctx := context.Background()
	customerID := id.NewCustomerID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.SaveCustomer(ctx, records.Customer{
		ID: customerID, FullName: "T", CreatedAt: base, UpdatedAt: base,
	}))

	for i, offset := range []time.Duration{-48 * time.Hour, -2 * time.Hour, -24 * time.Hour} {
		s.Require().NoError(s.store.SaveTransaction(ctx, records.Transaction{
			ID:          id.NewTransactionID(),
			CustomerID:  customerID,
			Amount:      float64(100 * (i + 1)),
			PaymentMode: "cash",
			OccurredAt:  base.Add(offset),
			CreatedAt:   base,
		}))
	}

	latest, err := s.store.LatestTransactionForCustomer(ctx, customerID)
	s.Require().NoError(err)
	s.Equal(200.0, latest.Amount, "the -2h transaction is the latest")
}

func (s *RecordsPostgresSuite) TestAssociatesWithAndWithoutCustomer() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	entityID := id.NewEntityID()
	customerID := id.NewCustomerID()

	s.Require().NoError(s.store.SaveEntity(ctx, records.LegalEntity{
		ID: entityID, Name: "Assoc Co", CreatedAt: now, UpdatedAt: now,
	}))
	s.Require().NoError(s.store.AddAssociate(ctx, records.AssociateLink{
		EntityID: entityID, CustomerID: customerID, Role: "ubo", CreatedAt: now,
	}))
	s.Require().NoError(s.store.AddAssociate(ctx, records.AssociateLink{
		EntityID: entityID, Role: "director", CreatedAt: now.Add(time.Second),
	}))

	links, err := s.store.ListAssociates(ctx, entityID)
	s.Require().NoError(err)
	s.Require().Len(links, 2)
	s.Equal(customerID, links[0].CustomerID)
	s.True(links[1].CustomerID.IsNil(), "NULL customer_id scans to nil ID")
}

func (s *RecordsPostgresSuite) TestTrainingRecencyAndPolicyExistence() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	recent, err := s.store.HasTrainingSince(ctx, now.AddDate(0, 0, -365))
	s.Require().NoError(err)
	s.False(recent)

	s.Require().NoError(s.store.SaveTraining(ctx, records.TrainingRecord{
		StaffName: "Old", CompletedAt: now.AddDate(-2, 0, 0), CreatedAt: now,
	}))
	s.Require().NoError(s.store.SaveTraining(ctx, records.TrainingRecord{
		StaffName: "Fresh", CompletedAt: now.AddDate(0, -1, 0), CreatedAt: now,
	}))

	recent, err = s.store.HasTrainingSince(ctx, now.AddDate(0, 0, -365))
	s.Require().NoError(err)
	s.True(recent)

	exists, err := s.store.PolicyExists(ctx)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.SavePolicy(ctx, records.PolicyDocument{
		Title: "Manual", Version: "1.0", UploadedAt: now,
	}))
	exists, err = s.store.PolicyExists(ctx)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *RecordsPostgresSuite) TestWithinRollsBackAllWrites() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	customer := records.Customer{
		ID: id.NewCustomerID(), FullName: "Atomic", CreatedAt: now, UpdatedAt: now,
	}
	transaction := records.Transaction{
		ID:         id.NewTransactionID(),
		CustomerID: customer.ID,
		Amount:     100000,
		OccurredAt: now,
		CreatedAt:  now,
	}

	err := txcontext.Within(ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.SaveCustomer(ctx, customer); err != nil {
			return err
		}
		if err := s.store.SaveTransaction(ctx, transaction); err != nil {
			return err
		}
		return errors.New("abort intake")
	})
	s.Require().EqualError(err, "abort intake")

	_, err = s.store.GetCustomer(ctx, customer.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.store.GetTransaction(ctx, transaction.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// Same unit of work, no error: both rows commit together.
	err = txcontext.Within(ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.SaveCustomer(ctx, customer); err != nil {
			return err
		}
		return s.store.SaveTransaction(ctx, transaction)
	})
	s.Require().NoError(err)

	loaded, err := s.store.GetTransaction(ctx, transaction.ID)
	s.Require().NoError(err)
	s.Equal(customer.ID, loaded.CustomerID)
}
