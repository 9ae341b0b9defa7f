package casefile

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"amlcase/internal/assessment"
	"amlcase/internal/audit"
	"amlcase/internal/casefile/metrics"
	"amlcase/internal/readiness"
	"amlcase/internal/records"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	"amlcase/pkg/requestcontext"
)

// AssessmentReader resolves the latest risk assessment for a customer.
type AssessmentReader interface {
	LatestCustomer(ctx context.Context, customerID id.CustomerID) (assessment.CustomerAssessment, error)
}

// Service evaluates inspection readiness for customer cases.
type Service struct {
	store       Store
	facts       records.Store
	assessments AssessmentReader
	audit       *audit.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

func NewService(
	store Store,
	facts records.Store,
	assessments AssessmentReader,
	auditPub *audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:       store,
		facts:       facts,
		assessments: assessments,
		audit:       auditPub,
		logger:      logger,
		metrics:     m,
		tracer:      otel.Tracer("amlcase/casefile"),
	}
}

// EvaluateCase gathers the evidence facts for one customer case, runs the
// readiness checklist, persists the snapshot, and audits. Only the customer
// record is a hard precondition; every other missing fact degrades to an
// unchecked item rather than an error.
func (s *Service) EvaluateCase(ctx context.Context, customerID id.CustomerID) (readiness.Result, error) {
	ctx, span := s.tracer.Start(ctx, "casefile.EvaluateCase",
		trace.WithAttributes(attribute.String("customer.id", customerID.String())),
	)
	defer span.End()

	customer, err := s.facts.GetCustomer(ctx, customerID)
	if err != nil {
		return readiness.Result{}, err
	}

	now := requestcontext.Now(ctx)

	input := readiness.Input{
		KYCComplete:         customer.KYCComplete,
		ScreeningDone:       customer.ScreeningDone,
		EDDEvidenceUploaded: customer.EDDEvidenceUploaded,
		RiskBand:            readiness.BandUnknown,
	}

	if _, err := s.facts.LatestTransactionForCustomer(ctx, customerID); err == nil {
		input.TransactionRecorded = true
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return readiness.Result{}, fmt.Errorf("transaction lookup: %w", err)
	}

	if latest, err := s.assessments.LatestCustomer(ctx, customerID); err == nil {
		input.RiskSaved = true
		input.RiskBand = readiness.Band(latest.Result.Category)
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return readiness.Result{}, fmt.Errorf("assessment lookup: %w", err)
	}

	trained, err := s.facts.HasTrainingSince(ctx, now.Add(-TrainingRecencyWindow))
	if err != nil {
		return readiness.Result{}, fmt.Errorf("training recency lookup: %w", err)
	}
	input.TrainingCompleted = trained

	policyExists, err := s.facts.PolicyExists(ctx)
	if err != nil {
		return readiness.Result{}, fmt.Errorf("policy lookup: %w", err)
	}
	input.PolicyExists = policyExists

	result := readiness.Evaluate(input)
	span.SetAttributes(attribute.Int("readiness.score", result.Score))

	snapshot := Snapshot{
		CustomerID:  customerID,
		Result:      result,
		Actor:       requestcontext.Actor(ctx),
		EvaluatedAt: now,
	}
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "persist readiness snapshot failed",
			"customer_id", customerID,
			"error", err,
		)
		return readiness.Result{}, fmt.Errorf("persist readiness snapshot: %w", err)
	}

	if s.audit != nil {
		event := audit.Event{
			Timestamp:   now,
			Subject:     customerID.String(),
			SubjectType: "customer",
			Action:      string(audit.EventReadinessEvaluated),
			Actor:       snapshot.Actor,
			Outcome:     fmt.Sprintf("%d", result.Score),
			RequestID:   requestcontext.RequestID(ctx),
		}
		if err := s.audit.Emit(ctx, event); err != nil {
			return readiness.Result{}, dErrors.Wrap(dErrors.CodeInternal, "compliance audit failed", err)
		}
	}

	s.metrics.ObserveEvaluation(summaryLabel(result.Score), result.Score)
	return result, nil
}

// LatestReadiness returns the most recent snapshot for a customer case.
func (s *Service) LatestReadiness(ctx context.Context, customerID id.CustomerID) (Snapshot, error) {
	return s.store.LatestSnapshot(ctx, customerID)
}

func summaryLabel(score int) string {
	switch {
	case score >= 80:
		return "strong"
	case score >= 50:
		return "adequate"
	default:
		return "attention"
	}
}
