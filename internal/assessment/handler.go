package assessment

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	"amlcase/pkg/platform/httputil"
	"amlcase/pkg/requestcontext"
)

// Handler exposes the risk evaluation endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the risk routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/customers/{customerID}/risk/evaluate", h.handleEvaluateCustomer)
	r.Get("/customers/{customerID}/risk", h.handleLatestCustomer)
	r.Post("/entities/{entityID}/risk/evaluate", h.handleEvaluateEntity)
	r.Get("/entities/{entityID}/risk", h.handleLatestEntity)
}

type evaluateCustomerRequest struct {
	TransactionID string `json:"transaction_id"`
}

func (r evaluateCustomerRequest) Validate() error {
	if r.TransactionID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "transaction_id is required")
	}
	return nil
}

type customerAssessmentResponse struct {
	CustomerID    string             `json:"customer_id"`
	TransactionID string             `json:"transaction_id"`
	AssessedAt    time.Time          `json:"assessed_at"`
	Result        scoring.RiskResult `json:"result"`
}

func (h *Handler) handleEvaluateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[evaluateCustomerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	transactionID, err := id.ParseTransactionID(req.TransactionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.EvaluateCustomer(ctx, customerID, transactionID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "customer evaluation failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, customerAssessmentResponse{
		CustomerID:    customerID.String(),
		TransactionID: req.TransactionID,
		AssessedAt:    requestcontext.Now(ctx),
		Result:        result,
	})
}

func (h *Handler) handleLatestCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	assessment, err := h.service.LatestCustomer(ctx, customerID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "latest customer assessment lookup failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, customerAssessmentResponse{
		CustomerID:    assessment.CustomerID.String(),
		TransactionID: assessment.TransactionID.String(),
		AssessedAt:    assessment.AssessedAt,
		Result:        assessment.Result,
	})
}

type entityAssessmentResponse struct {
	EntityID   string                   `json:"entity_id"`
	AssessedAt time.Time                `json:"assessed_at"`
	Result     scoring.EntityRiskResult `json:"result"`
}

func (h *Handler) handleEvaluateEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.EvaluateEntity(ctx, entityID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "entity evaluation failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entityAssessmentResponse{
		EntityID:   entityID.String(),
		AssessedAt: requestcontext.Now(ctx),
		Result:     result,
	})
}

func (h *Handler) handleLatestEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	assessment, err := h.service.LatestEntity(ctx, entityID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "latest entity assessment lookup failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entityAssessmentResponse{
		EntityID:   assessment.EntityID.String(),
		AssessedAt: assessment.AssessedAt,
		Result:     assessment.Result,
	})
}

// writeServiceError passes coded errors through and masks everything else as
// internal so store details never reach clients.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
	default:
		httputil.WriteError(w, err)
	}
}
