package casefile

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amlcase/internal/readiness"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	"amlcase/pkg/platform/httputil"
	"amlcase/pkg/requestcontext"
)

// Handler exposes the readiness endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the readiness routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/customers/{customerID}/readiness/evaluate", h.handleEvaluate)
	r.Get("/customers/{customerID}/readiness", h.handleLatest)
}

type readinessResponse struct {
	CustomerID  string           `json:"customer_id"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
	Result      readiness.Result `json:"result"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.EvaluateCase(ctx, customerID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "readiness evaluation failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, readinessResponse{
		CustomerID:  customerID.String(),
		EvaluatedAt: requestcontext.Now(ctx),
		Result:      result,
	})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snapshot, err := h.service.LatestReadiness(ctx, customerID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "latest readiness lookup failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, readinessResponse{
		CustomerID:  snapshot.CustomerID.String(),
		EvaluatedAt: snapshot.EvaluatedAt,
		Result:      snapshot.Result,
	})
}

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
