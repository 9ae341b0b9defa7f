package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"amlcase/internal/assessment"
	"amlcase/internal/audit"
	"amlcase/internal/casefile"
	"amlcase/internal/jwtauth"
	"amlcase/internal/readiness"
	"amlcase/internal/records"
	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
)

// RouterSuite walks the full request path: auth middleware, handlers,
// services, and in-memory stores.
type RouterSuite struct {
	suite.Suite
	router http.Handler
	token  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwt := jwtauth.NewService("test-signing-key", "amlcase-test", "amlcase-api")

	token, err := jwt.GenerateToken("officer-1", time.Hour)
	require.NoError(s.T(), err)
	s.token = token

	factStore := records.NewInMemoryStore()
	assessmentStore := assessment.NewInMemoryStore()
	caseStore := casefile.NewInMemoryStore()
	auditStore := audit.NewInMemoryStore()
	auditPub := audit.NewPublisher(auditStore)

	assessmentService := assessment.NewService(
		assessmentStore, factStore, nil, scoring.DefaultPolicy(), auditPub, logger, nil,
	)
	caseService := casefile.NewService(
		caseStore, factStore, assessmentService, auditPub, logger, nil,
	)

	s.router = NewRouter(Deps{
		Logger:         logger,
		TokenValidator: jwt,
		Records:        records.NewHandler(factStore, auditPub, logger, nil),
		Assessment:     assessment.NewHandler(assessmentService, logger),
		Casefile:       casefile.NewHandler(caseService, logger),
	})
}

func (s *RouterSuite) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealthzIsOpen() {
	w := s.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), `"status":"ok"`)
}

func (s *RouterSuite) TestBusinessRoutesRequireAuth() {
	w := s.do(http.MethodPost, "/records/customers", map[string]any{"full_name": "X"}, false)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestRejectsGarbageToken() {
	req := httptest.NewRequest(http.MethodGet, "/customers/"+id.NewCustomerID().String()+"/risk", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestEndToEndCustomerFlow() {
	// Intake customer.
	w := s.do(http.MethodPost, "/records/customers", map[string]any{
		"full_name":    "E2E Customer",
		"filer_status": "non-filer",
		"city":         "chaman",
		"kyc_complete": true,
	}, true)
	require.Equal(s.T(), http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &created))
	customerID := created["id"]

	// Intake transaction.
	w = s.do(http.MethodPost, "/records/transactions", map[string]any{
		"customer_id":     customerID,
		"amount":          1200000.0,
		"payment_mode":    "cash",
		"source_of_funds": "unknown",
	}, true)
	require.Equal(s.T(), http.StatusCreated, w.Code)
	var createdTxn map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &createdTxn))

	// Evaluate risk.
	w = s.do(http.MethodPost, "/customers/"+customerID+"/risk/evaluate", map[string]any{
		"transaction_id": createdTxn["id"],
	}, true)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var evaluated struct {
		Result scoring.RiskResult `json:"result"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &evaluated))
	// non-filer 20 + cash 15 + unknown 20 + no pep 0 + no income 10 +
	// watch-list city 10 = 75.
	assert.Equal(s.T(), 75, evaluated.Result.OverallScore)
	assert.Equal(s.T(), scoring.CategoryHigh, evaluated.Result.Category)
	require.Len(s.T(), evaluated.Result.RedFlags, 2)

	// Latest assessment round trip.
	w = s.do(http.MethodGet, "/customers/"+customerID+"/risk", nil, true)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var latest struct {
		TransactionID string             `json:"transaction_id"`
		Result        scoring.RiskResult `json:"result"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &latest))
	assert.Equal(s.T(), createdTxn["id"], latest.TransactionID)
	assert.Equal(s.T(), evaluated.Result.OverallScore, latest.Result.OverallScore)

	// Readiness sees the saved HIGH band and requires EDD.
	w = s.do(http.MethodPost, "/customers/"+customerID+"/readiness/evaluate", nil, true)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var readinessResp struct {
		Result readiness.Result `json:"result"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &readinessResp))
	for _, item := range readinessResp.Result.Checklist {
		if item.Key == readiness.KeyEDDEvidence {
			assert.True(s.T(), item.Applicable)
		}
	}
}

func (s *RouterSuite) TestUnknownCustomerRisk404() {
	w := s.do(http.MethodGet, "/customers/"+id.NewCustomerID().String()+"/risk", nil, true)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestMalformedIDIsBadRequest() {
	w := s.do(http.MethodGet, "/customers/not-a-uuid/risk", nil, true)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}
