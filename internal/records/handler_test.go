package records

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"amlcase/internal/audit"
	id "amlcase/pkg/domain"
	"amlcase/pkg/requestcontext"
)

type RecordsHandlerSuite struct {
	suite.Suite
	store    *InMemoryStore
	auditLog *audit.InMemoryStore
	router   *chi.Mux
	now      time.Time
}

func TestRecordsHandlerSuite(t *testing.T) {
	suite.Run(t, new(RecordsHandlerSuite))
}

func (s *RecordsHandlerSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditLog = audit.NewInMemoryStore()
	s.now = time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(s.store, audit.NewPublisher(s.auditLog), logger, nil)
	s.router = chi.NewRouter()
	handler.Register(s.router)
}

func (s *RecordsHandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req = req.WithContext(requestcontext.WithTime(req.Context(), s.now))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RecordsHandlerSuite) TestSaveCustomer() {
	income := 1500000.0
	w := s.post("/records/customers", map[string]any{
		"full_name":     "Asma Khan",
		"city":          "Lahore",
		"filer_status":  "filer",
		"annual_income": income,
		"pep_status":    "no",
		"kyc_complete":  true,
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	customerID, err := id.ParseCustomerID(resp["id"])
	require.NoError(s.T(), err)

	customer, err := s.store.GetCustomer(context.Background(), customerID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Asma Khan", customer.FullName)
	assert.Equal(s.T(), "Lahore", customer.City)
	assert.True(s.T(), customer.KYCComplete)
	require.NotNil(s.T(), customer.AnnualIncome)
	assert.Equal(s.T(), income, *customer.AnnualIncome)
	assert.Equal(s.T(), s.now, customer.CreatedAt)

	events := s.auditLog.All()
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), string(audit.EventCustomerRecorded), events[0].Action)
	assert.Equal(s.T(), audit.CategoryOperations, events[0].Category)
}

func (s *RecordsHandlerSuite) TestSaveCustomer_UpsertsOnID() {
	customerID := id.NewCustomerID()

	w := s.post("/records/customers", map[string]any{
		"id":        customerID.String(),
		"full_name": "Before",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	w = s.post("/records/customers", map[string]any{
		"id":        customerID.String(),
		"full_name": "After",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	customer, err := s.store.GetCustomer(context.Background(), customerID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "After", customer.FullName)
}

func (s *RecordsHandlerSuite) TestSaveCustomer_RejectsMissingName() {
	w := s.post("/records/customers", map[string]any{"city": "Karachi"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "full_name is required")
}

func (s *RecordsHandlerSuite) TestSaveCustomer_RejectsUnknownFields() {
	w := s.post("/records/customers", map[string]any{
		"full_name": "X",
		"ful_name":  "typo",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *RecordsHandlerSuite) TestSaveTransaction() {
	customerID := s.seedCustomer()

	w := s.post("/records/transactions", map[string]any{
		"customer_id":     customerID.String(),
		"amount":          600000.0,
		"payment_mode":    "cash",
		"source_of_funds": "business_income",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	transactionID, err := id.ParseTransactionID(resp["id"])
	require.NoError(s.T(), err)

	txn, err := s.store.GetTransaction(context.Background(), transactionID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), customerID, txn.CustomerID)
	assert.Equal(s.T(), 600000.0, txn.Amount)
	assert.Equal(s.T(), "cash", txn.PaymentMode)
	assert.Equal(s.T(), s.now, txn.OccurredAt, "occurred_at defaults to request time")
}

func (s *RecordsHandlerSuite) TestSaveTransaction_UnknownCustomer404() {
	w := s.post("/records/transactions", map[string]any{
		"customer_id": id.NewCustomerID().String(),
		"amount":      100.0,
	})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *RecordsHandlerSuite) TestSaveEntityAndAssociate() {
	customerID := s.seedCustomer()

	w := s.post("/records/entities", map[string]any{
		"name":              "Crescent Traders (Pvt) Ltd",
		"sector":            "gold trading",
		"has_bearer_shares": true,
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	entityID, err := id.ParseEntityID(resp["id"])
	require.NoError(s.T(), err)

	w = s.post("/records/entities/"+entityID.String()+"/associates", map[string]any{
		"customer_id": customerID.String(),
		"role":        "ubo",
	})
	require.Equal(s.T(), http.StatusNoContent, w.Code)

	// Associates without a customer record link with a nil customer ID.
	w = s.post("/records/entities/"+entityID.String()+"/associates", map[string]any{
		"role": "director",
	})
	require.Equal(s.T(), http.StatusNoContent, w.Code)

	links, err := s.store.ListAssociates(context.Background(), entityID)
	require.NoError(s.T(), err)
	require.Len(s.T(), links, 2)
	assert.Equal(s.T(), customerID, links[0].CustomerID)
	assert.Equal(s.T(), "ubo", links[0].Role)
	assert.True(s.T(), links[1].CustomerID.IsNil())
}

func (s *RecordsHandlerSuite) TestAddAssociate_UnknownEntity404() {
	w := s.post("/records/entities/"+id.NewEntityID().String()+"/associates", map[string]any{
		"role": "director",
	})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *RecordsHandlerSuite) TestSaveTrainingAndPolicy() {
	w := s.post("/records/training", map[string]any{
		"staff_name":   "B. Raza",
		"completed_at": s.now.AddDate(0, -2, 0).Format(time.RFC3339),
	})
	require.Equal(s.T(), http.StatusNoContent, w.Code)

	recent, err := s.store.HasTrainingSince(context.Background(), s.now.AddDate(0, 0, -365))
	require.NoError(s.T(), err)
	assert.True(s.T(), recent)

	w = s.post("/records/policies", map[string]any{
		"title":   "AML/CFT Program Manual",
		"version": "3.1",
	})
	require.Equal(s.T(), http.StatusNoContent, w.Code)

	exists, err := s.store.PolicyExists(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *RecordsHandlerSuite) TestSaveTraining_RejectsBadTimestamp() {
	w := s.post("/records/training", map[string]any{
		"staff_name":   "B. Raza",
		"completed_at": "yesterday",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *RecordsHandlerSuite) seedCustomer() id.CustomerID {
	customerID := id.NewCustomerID()
	require.NoError(s.T(), s.store.SaveCustomer(context.Background(), Customer{
		ID:       customerID,
		FullName: "Seed Customer",
	}))
	return customerID
}
