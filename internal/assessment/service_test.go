package assessment

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"amlcase/internal/audit"
	"amlcase/internal/records"
	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	"amlcase/pkg/requestcontext"
)

type AssessmentServiceSuite struct {
	suite.Suite
	ctx      context.Context
	facts    *records.InMemoryStore
	store    *InMemoryStore
	auditLog *audit.InMemoryStore
	service  *Service
	now      time.Time
}

func TestAssessmentServiceSuite(t *testing.T) {
	suite.Run(t, new(AssessmentServiceSuite))
}

func (s *AssessmentServiceSuite) SetupTest() {
	s.facts = records.NewInMemoryStore()
	s.store = NewInMemoryStore()
	s.auditLog = audit.NewInMemoryStore()
	s.now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithActor(s.ctx, "officer-7")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(
		s.store,
		s.facts,
		nil, // no redis in unit tests; nil cache always misses
		scoring.DefaultPolicy(),
		audit.NewPublisher(s.auditLog),
		logger,
		nil,
	)
}

func (s *AssessmentServiceSuite) seedCustomer(customer records.Customer) id.CustomerID {
	if customer.ID.IsNil() {
		customer.ID = id.NewCustomerID()
	}
	require.NoError(s.T(), s.facts.SaveCustomer(s.ctx, customer))
	return customer.ID
}

func (s *AssessmentServiceSuite) seedTransaction(txn records.Transaction) id.TransactionID {
	if txn.ID.IsNil() {
		txn.ID = id.NewTransactionID()
	}
	require.NoError(s.T(), s.facts.SaveTransaction(s.ctx, txn))
	return txn.ID
}

func (s *AssessmentServiceSuite) TestEvaluateCustomer_PersistsAndAudits() {
	income := 3000000.0
	customerID := s.seedCustomer(records.Customer{
		FullName:     "Filer Customer",
		FilerStatus:  "filer",
		AnnualIncome: &income,
		PEPStatus:    "no",
		City:         "Karachi",
	})
	transactionID := s.seedTransaction(records.Transaction{
		CustomerID:    customerID,
		Amount:        2500000,
		PaymentMode:   "cash",
		SourceOfFunds: "salary",
	})

	result, err := s.service.EvaluateCustomer(s.ctx, customerID, transactionID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 30, result.OverallScore)
	assert.Equal(s.T(), scoring.CategoryLow, result.Category)
	assert.True(s.T(), result.Recommendations.CTR)

	saved, err := s.store.LatestCustomerAssessment(s.ctx, customerID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), result, saved.Result)
	assert.Equal(s.T(), transactionID, saved.TransactionID)
	assert.Equal(s.T(), "officer-7", saved.Actor)
	assert.Equal(s.T(), s.now, saved.AssessedAt)

	events := s.auditLog.All()
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), string(audit.EventCustomerRiskAssessed), events[0].Action)
	assert.Equal(s.T(), audit.CategoryCompliance, events[0].Category)
	assert.Equal(s.T(), "LOW", events[0].Outcome)
	assert.Equal(s.T(), customerID.String(), events[0].Subject)
}

func (s *AssessmentServiceSuite) TestEvaluateCustomer_UpsertReplacesSamePair() {
	customerID := s.seedCustomer(records.Customer{FullName: "X"})
	transactionID := s.seedTransaction(records.Transaction{
		CustomerID:  customerID,
		Amount:      600000,
		PaymentMode: "cash",
	})

	_, err := s.service.EvaluateCustomer(s.ctx, customerID, transactionID)
	require.NoError(s.T(), err)
	_, err = s.service.EvaluateCustomer(s.ctx, customerID, transactionID)
	require.NoError(s.T(), err)

	// One row per (customer, transaction) pair; two audit events.
	saved, err := s.store.LatestCustomerAssessment(s.ctx, customerID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), transactionID, saved.TransactionID)
	assert.Len(s.T(), s.auditLog.All(), 2)
}

func (s *AssessmentServiceSuite) TestEvaluateCustomer_MissingCustomer() {
	transactionID := s.seedTransaction(records.Transaction{
		CustomerID: id.NewCustomerID(),
		Amount:     100,
	})

	_, err := s.service.EvaluateCustomer(s.ctx, id.NewCustomerID(), transactionID)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Empty(s.T(), s.auditLog.All(), "failed preconditions emit no audit event")
}

func (s *AssessmentServiceSuite) TestEvaluateCustomer_MissingTransaction() {
	customerID := s.seedCustomer(records.Customer{FullName: "X"})

	_, err := s.service.EvaluateCustomer(s.ctx, customerID, id.NewTransactionID())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AssessmentServiceSuite) TestEvaluateCustomer_TransactionOwnershipConflict() {
	customerID := s.seedCustomer(records.Customer{FullName: "A"})
	otherID := s.seedCustomer(records.Customer{FullName: "B"})
	transactionID := s.seedTransaction(records.Transaction{
		CustomerID: otherID,
		Amount:     100,
	})

	_, err := s.service.EvaluateCustomer(s.ctx, customerID, transactionID)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AssessmentServiceSuite) TestEvaluateCustomer_AuditFailureFailsEvaluation() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(
		s.store,
		s.facts,
		nil,
		scoring.DefaultPolicy(),
		audit.NewPublisher(brokenAuditStore{}),
		logger,
		nil,
	)

	customerID := s.seedCustomer(records.Customer{FullName: "X"})
	transactionID := s.seedTransaction(records.Transaction{CustomerID: customerID, Amount: 100})

	_, err := service.EvaluateCustomer(s.ctx, customerID, transactionID)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *AssessmentServiceSuite) TestEvaluateEntity_InheritsAssociateRisk() {
	// Associate with a stored HIGH assessment.
	riskyID := s.seedCustomer(records.Customer{
		FullName:    "Risky Associate",
		FilerStatus: "non-filer",
	})
	riskyTxn := s.seedTransaction(records.Transaction{
		CustomerID:    riskyID,
		Amount:        600000,
		PaymentMode:   "cash",
		SourceOfFunds: "unknown",
	})
	result, err := s.service.EvaluateCustomer(s.ctx, riskyID, riskyTxn)
	require.NoError(s.T(), err)
	require.Equal(s.T(), scoring.CategoryHigh, result.Category)

	entityID := id.NewEntityID()
	require.NoError(s.T(), s.facts.SaveEntity(s.ctx, records.LegalEntity{
		ID:   entityID,
		Name: "Shell Co",
	}))
	require.NoError(s.T(), s.facts.AddAssociate(s.ctx, records.AssociateLink{
		EntityID:   entityID,
		CustomerID: riskyID,
		Role:       "ubo",
	}))

	entityResult, err := s.service.EvaluateEntity(s.ctx, entityID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), result.OverallScore, entityResult.Inputs.MaxAssociateScore)
	assert.Equal(s.T(), result.OverallScore, entityResult.Score)

	saved, err := s.store.LatestEntityAssessment(s.ctx, entityID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), entityResult, saved.Result)

	events, err := s.auditLog.ListBySubject(s.ctx, entityID.String())
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), string(audit.EventEntityRiskAssessed), events[0].Action)
}

func (s *AssessmentServiceSuite) TestEvaluateEntity_UnassessedAssociateGetsDefault() {
	entityID := id.NewEntityID()
	require.NoError(s.T(), s.facts.SaveEntity(s.ctx, records.LegalEntity{
		ID:   entityID,
		Name: "Plain Co",
	}))
	unassessed := s.seedCustomer(records.Customer{FullName: "No Assessment"})
	require.NoError(s.T(), s.facts.AddAssociate(s.ctx, records.AssociateLink{
		EntityID:   entityID,
		CustomerID: unassessed,
		Role:       "director",
	}))

	result, err := s.service.EvaluateEntity(s.ctx, entityID)
	require.NoError(s.T(), err)
	// Default associate risk is 20; base 20 dominates the same, final 20.
	assert.Equal(s.T(), 20, result.Inputs.MaxAssociateScore)
	assert.Equal(s.T(), scoring.EntityBandLow, result.Band)
}

func (s *AssessmentServiceSuite) TestEvaluateEntity_MissingEntity() {
	_, err := s.service.EvaluateEntity(s.ctx, id.NewEntityID())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AssessmentServiceSuite) TestLatestCustomer_NoneIsNotFound() {
	_, err := s.service.LatestCustomer(s.ctx, id.NewCustomerID())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

type brokenAuditStore struct{}

func (brokenAuditStore) Append(context.Context, audit.Event) error {
	return context.DeadlineExceeded
}

func (brokenAuditStore) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}
