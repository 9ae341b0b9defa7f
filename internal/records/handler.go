package records

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amlcase/internal/audit"
	"amlcase/internal/records/metrics"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	"amlcase/pkg/platform/httputil"
	"amlcase/pkg/requestcontext"
)

// Handler exposes the fact intake endpoints. Intake is deliberately
// permissive about scoring fields: the scorers treat unrecognized values as
// defaults, so rejecting them here would only push bad data into side
// channels.
type Handler struct {
	logger  *slog.Logger
	store   Store
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

func NewHandler(store Store, auditPub *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, store: store, metrics: m, audit: auditPub}
}

// Register mounts the intake routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/records", func(r chi.Router) {
		r.Post("/customers", h.handleSaveCustomer)
		r.Post("/transactions", h.handleSaveTransaction)
		r.Post("/entities", h.handleSaveEntity)
		r.Post("/entities/{entityID}/associates", h.handleAddAssociate)
		r.Post("/training", h.handleSaveTraining)
		r.Post("/policies", h.handleSavePolicy)
	})
}

type saveCustomerRequest struct {
	ID                  string   `json:"id,omitempty"`
	FullName            string   `json:"full_name"`
	City                string   `json:"city,omitempty"`
	FilerStatus         string   `json:"filer_status,omitempty"`
	AnnualIncome        *float64 `json:"annual_income,omitempty"`
	PEPStatus           string   `json:"pep_status,omitempty"`
	KYCComplete         bool     `json:"kyc_complete,omitempty"`
	ScreeningDone       bool     `json:"screening_done,omitempty"`
	EDDEvidenceUploaded bool     `json:"edd_evidence_uploaded,omitempty"`
}

func (r saveCustomerRequest) Validate() error {
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	if r.AnnualIncome != nil && *r.AnnualIncome < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "annual_income must not be negative")
	}
	return nil
}

type savedResponse struct {
	ID string `json:"id"`
}

func (h *Handler) handleSaveCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[saveCustomerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncRejected("customer")
		return
	}

	customerID := id.NewCustomerID()
	if req.ID != "" {
		parsed, err := id.ParseCustomerID(req.ID)
		if err != nil {
			h.metrics.IncRejected("customer")
			httputil.WriteError(w, err)
			return
		}
		customerID = parsed
	}

	now := requestcontext.Now(ctx)
	customer := Customer{
		ID:                  customerID,
		FullName:            req.FullName,
		City:                req.City,
		FilerStatus:         req.FilerStatus,
		AnnualIncome:        req.AnnualIncome,
		PEPStatus:           req.PEPStatus,
		KYCComplete:         req.KYCComplete,
		ScreeningDone:       req.ScreeningDone,
		EDDEvidenceUploaded: req.EDDEvidenceUploaded,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := h.store.SaveCustomer(ctx, customer); err != nil {
		h.logger.ErrorContext(ctx, "save customer failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to save customer"))
		return
	}

	h.metrics.IncSaved("customer")
	h.emitIntakeEvent(ctx, audit.EventCustomerRecorded, customerID.String(), "customer")
	httputil.WriteJSON(w, http.StatusCreated, savedResponse{ID: customerID.String()})
}

type saveTransactionRequest struct {
	ID            string  `json:"id,omitempty"`
	CustomerID    string  `json:"customer_id"`
	Amount        float64 `json:"amount"`
	PaymentMode   string  `json:"payment_mode,omitempty"`
	SourceOfFunds string  `json:"source_of_funds,omitempty"`
	OccurredAt    string  `json:"occurred_at,omitempty"`
}

func (r saveTransactionRequest) Validate() error {
	if r.CustomerID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "customer_id is required")
	}
	if r.OccurredAt != "" {
		if _, err := time.Parse(time.RFC3339, r.OccurredAt); err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "occurred_at must be RFC 3339")
		}
	}
	return nil
}

func (h *Handler) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[saveTransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncRejected("transaction")
		return
	}

	customerID, err := id.ParseCustomerID(req.CustomerID)
	if err != nil {
		h.metrics.IncRejected("transaction")
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.store.GetCustomer(ctx, customerID); err != nil {
		h.writeStoreError(ctx, w, err, "transaction intake: customer lookup failed")
		return
	}

	transactionID := id.NewTransactionID()
	if req.ID != "" {
		parsed, err := id.ParseTransactionID(req.ID)
		if err != nil {
			h.metrics.IncRejected("transaction")
			httputil.WriteError(w, err)
			return
		}
		transactionID = parsed
	}

	now := requestcontext.Now(ctx)
	occurredAt := now
	if req.OccurredAt != "" {
		occurredAt, _ = time.Parse(time.RFC3339, req.OccurredAt)
	}

	txn := Transaction{
		ID:            transactionID,
		CustomerID:    customerID,
		Amount:        req.Amount,
		PaymentMode:   req.PaymentMode,
		SourceOfFunds: req.SourceOfFunds,
		OccurredAt:    occurredAt,
		CreatedAt:     now,
	}
	if err := h.store.SaveTransaction(ctx, txn); err != nil {
		h.logger.ErrorContext(ctx, "save transaction failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to save transaction"))
		return
	}

	h.metrics.IncSaved("transaction")
	h.emitIntakeEvent(ctx, audit.EventTransactionRecorded, transactionID.String(), "transaction")
	httputil.WriteJSON(w, http.StatusCreated, savedResponse{ID: transactionID.String()})
}

type saveEntityRequest struct {
	ID                  string `json:"id,omitempty"`
	Name                string `json:"name"`
	Sector              string `json:"sector,omitempty"`
	HasCrossBorder      bool   `json:"has_cross_border,omitempty"`
	HasComplexOwnership bool   `json:"has_complex_ownership,omitempty"`
	HasBearerShares     bool   `json:"has_bearer_shares,omitempty"`
}

func (r saveEntityRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

func (h *Handler) handleSaveEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[saveEntityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncRejected("entity")
		return
	}

	entityID := id.NewEntityID()
	if req.ID != "" {
		parsed, err := id.ParseEntityID(req.ID)
		if err != nil {
			h.metrics.IncRejected("entity")
			httputil.WriteError(w, err)
			return
		}
		entityID = parsed
	}

	now := requestcontext.Now(ctx)
	entity := LegalEntity{
		ID:                  entityID,
		Name:                req.Name,
		Sector:              req.Sector,
		HasCrossBorder:      req.HasCrossBorder,
		HasComplexOwnership: req.HasComplexOwnership,
		HasBearerShares:     req.HasBearerShares,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := h.store.SaveEntity(ctx, entity); err != nil {
		h.logger.ErrorContext(ctx, "save entity failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to save entity"))
		return
	}

	h.metrics.IncSaved("entity")
	h.emitIntakeEvent(ctx, audit.EventEntityRecorded, entityID.String(), "entity")
	httputil.WriteJSON(w, http.StatusCreated, savedResponse{ID: entityID.String()})
}

type addAssociateRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Role       string `json:"role"`
}

func (r addAssociateRequest) Validate() error {
	if r.Role == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "role is required")
	}
	return nil
}

func (h *Handler) handleAddAssociate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.store.GetEntity(ctx, entityID); err != nil {
		h.writeStoreError(ctx, w, err, "associate intake: entity lookup failed")
		return
	}

	req, ok := httputil.DecodeAndPrepare[addAssociateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncRejected("associate")
		return
	}

	var customerID id.CustomerID
	if req.CustomerID != "" {
		customerID, err = id.ParseCustomerID(req.CustomerID)
		if err != nil {
			h.metrics.IncRejected("associate")
			httputil.WriteError(w, err)
			return
		}
		if _, err := h.store.GetCustomer(ctx, customerID); err != nil {
			h.writeStoreError(ctx, w, err, "associate intake: customer lookup failed")
			return
		}
	}

	link := AssociateLink{
		EntityID:   entityID,
		CustomerID: customerID,
		Role:       req.Role,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := h.store.AddAssociate(ctx, link); err != nil {
		h.logger.ErrorContext(ctx, "add associate failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to add associate"))
		return
	}

	h.metrics.IncSaved("associate")
	h.emitIntakeEvent(ctx, audit.EventAssociateLinked, entityID.String(), "entity")
	w.WriteHeader(http.StatusNoContent)
}

type saveTrainingRequest struct {
	StaffName   string `json:"staff_name"`
	CompletedAt string `json:"completed_at"`
}

func (r saveTrainingRequest) Validate() error {
	if r.StaffName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "staff_name is required")
	}
	if r.CompletedAt == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "completed_at is required")
	}
	if _, err := time.Parse(time.RFC3339, r.CompletedAt); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "completed_at must be RFC 3339")
	}
	return nil
}

func (h *Handler) handleSaveTraining(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[saveTrainingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncRejected("training")
		return
	}

	completedAt, _ := time.Parse(time.RFC3339, req.CompletedAt)
	record := TrainingRecord{
		StaffName:   req.StaffName,
		CompletedAt: completedAt,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := h.store.SaveTraining(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "save training record failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to save training record"))
		return
	}

	h.metrics.IncSaved("training")
	h.emitIntakeEvent(ctx, audit.EventTrainingRecorded, req.StaffName, "staff")
	w.WriteHeader(http.StatusNoContent)
}

type savePolicyRequest struct {
	Title   string `json:"title"`
	Version string `json:"version,omitempty"`
}

func (r savePolicyRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	return nil
}

func (h *Handler) handleSavePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[savePolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncRejected("policy")
		return
	}

	doc := PolicyDocument{
		Title:      req.Title,
		Version:    req.Version,
		UploadedAt: requestcontext.Now(ctx),
	}
	if err := h.store.SavePolicy(ctx, doc); err != nil {
		h.logger.ErrorContext(ctx, "save policy document failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to save policy document"))
		return
	}

	h.metrics.IncSaved("policy")
	h.emitIntakeEvent(ctx, audit.EventPolicyRecorded, req.Title, "policy")
	w.WriteHeader(http.StatusNoContent)
}

// emitIntakeEvent records an operations audit event. Intake events are
// best-effort: a failed audit write is logged but does not fail the intake,
// unlike compliance events on the assessment path.
func (h *Handler) emitIntakeEvent(ctx context.Context, action audit.AuditEvent, subject, subjectType string) {
	if h.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:   requestcontext.Now(ctx),
		Subject:     subject,
		SubjectType: subjectType,
		Action:      string(action),
		Actor:       requestcontext.Actor(ctx),
		RequestID:   requestcontext.RequestID(ctx),
	}
	if err := h.audit.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "intake audit event dropped",
			"action", action,
			"error", err,
		)
	}
}

func (h *Handler) writeStoreError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg, "error", err)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "storage failure"))
}
