package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"amlcase/internal/assessment/metrics"
	"amlcase/internal/audit"
	"amlcase/internal/records"
	"amlcase/internal/scoring"
	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
	"amlcase/pkg/requestcontext"
)

// RecordsReader is the slice of the records store this service needs.
type RecordsReader interface {
	GetCustomer(ctx context.Context, customerID id.CustomerID) (records.Customer, error)
	GetTransaction(ctx context.Context, transactionID id.TransactionID) (records.Transaction, error)
	GetEntity(ctx context.Context, entityID id.EntityID) (records.LegalEntity, error)
	ListAssociates(ctx context.Context, entityID id.EntityID) ([]records.AssociateLink, error)
}

// Service runs the scorers against stored facts, persists the results, and
// emits the compliance audit trail. Audit is fail-closed on this path: an
// evaluation whose audit write fails is reported as failed even though the
// result was computed.
type Service struct {
	store   Store
	facts   RecordsReader
	cache   *ScoreCache
	policy  scoring.Policy
	audit   *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewService(
	store Store,
	facts RecordsReader,
	cache *ScoreCache,
	policy scoring.Policy,
	auditPub *audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:   store,
		facts:   facts,
		cache:   cache,
		policy:  policy,
		audit:   auditPub,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("amlcase/assessment"),
	}
}

// EvaluateCustomer scores one customer against one recorded transaction and
// persists the result. Missing customer or transaction is a precondition
// failure; a transaction belonging to a different customer is a conflict.
func (s *Service) EvaluateCustomer(ctx context.Context, customerID id.CustomerID, transactionID id.TransactionID) (scoring.RiskResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "assessment.EvaluateCustomer",
		trace.WithAttributes(attribute.String("customer.id", customerID.String())),
	)
	defer span.End()

	customer, err := s.facts.GetCustomer(ctx, customerID)
	if err != nil {
		return scoring.RiskResult{}, err
	}
	txn, err := s.facts.GetTransaction(ctx, transactionID)
	if err != nil {
		return scoring.RiskResult{}, err
	}
	if txn.CustomerID != customerID {
		return scoring.RiskResult{}, dErrors.New(dErrors.CodeConflict, "transaction belongs to a different customer")
	}

	input := scoring.RiskInput{
		Amount:        txn.Amount,
		AnnualIncome:  customer.AnnualIncome,
		FilerStatus:   customer.FilerStatus,
		PaymentMode:   txn.PaymentMode,
		SourceOfFunds: txn.SourceOfFunds,
		PEPStatus:     customer.PEPStatus,
		City:          customer.City,
	}
	result := scoring.Score(input, s.policy)
	span.SetAttributes(
		attribute.Int("risk.score", result.OverallScore),
		attribute.String("risk.category", string(result.Category)),
	)

	now := requestcontext.Now(ctx)
	assessment := CustomerAssessment{
		ID:            id.NewAssessmentID(),
		CustomerID:    customerID,
		TransactionID: transactionID,
		Result:        result,
		Actor:         requestcontext.Actor(ctx),
		AssessedAt:    now,
	}
	if err := s.store.UpsertCustomerAssessment(ctx, assessment); err != nil {
		s.logger.ErrorContext(ctx, "persist customer assessment failed",
			"customer_id", customerID,
			"error", err,
		)
		return scoring.RiskResult{}, fmt.Errorf("persist customer assessment: %w", err)
	}

	s.cache.Set(ctx, customerID, scoring.AssociateRisk{
		Score: result.OverallScore,
		Band:  result.Category,
	})

	if err := s.emitComplianceEvent(ctx, audit.Event{
		Timestamp:   now,
		Subject:     customerID.String(),
		SubjectType: "customer",
		Action:      string(audit.EventCustomerRiskAssessed),
		Actor:       assessment.Actor,
		Outcome:     string(result.Category),
		Reason:      flagSummary(result.RedFlags),
		RequestID:   requestcontext.RequestID(ctx),
	}); err != nil {
		return scoring.RiskResult{}, err
	}

	s.metrics.IncCustomerEvaluation(string(result.Category))
	s.metrics.ObserveEvaluateLatency("customer", time.Since(start))
	return result, nil
}

// EvaluateEntity scores a legal entity, resolving each linked associate's
// latest stored risk through the cache-then-store path.
func (s *Service) EvaluateEntity(ctx context.Context, entityID id.EntityID) (scoring.EntityRiskResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "assessment.EvaluateEntity",
		trace.WithAttributes(attribute.String("entity.id", entityID.String())),
	)
	defer span.End()

	entity, err := s.facts.GetEntity(ctx, entityID)
	if err != nil {
		return scoring.EntityRiskResult{}, err
	}
	links, err := s.facts.ListAssociates(ctx, entityID)
	if err != nil {
		return scoring.EntityRiskResult{}, fmt.Errorf("list associates: %w", err)
	}

	input := scoring.EntityRiskInput{
		Sector:              entity.Sector,
		HasCrossBorder:      entity.HasCrossBorder,
		HasComplexOwnership: entity.HasComplexOwnership,
		HasBearerShares:     entity.HasBearerShares,
		Associates:          make([]scoring.Associate, 0, len(links)),
	}
	lookup := scoring.AssociateRiskLookup{}
	for _, link := range links {
		associate := scoring.Associate{Role: link.Role}
		if !link.CustomerID.IsNil() {
			associate.CustomerID = link.CustomerID.String()
			if risk, ok := s.lookupAssociateRisk(ctx, link.CustomerID); ok {
				lookup[associate.CustomerID] = risk
			}
		}
		input.Associates = append(input.Associates, associate)
	}

	result := scoring.ScoreEntity(input, lookup, s.policy)
	span.SetAttributes(
		attribute.Int("risk.score", result.Score),
		attribute.String("risk.band", string(result.Band)),
	)

	now := requestcontext.Now(ctx)
	assessment := EntityAssessment{
		ID:         id.NewAssessmentID(),
		EntityID:   entityID,
		Result:     result,
		Actor:      requestcontext.Actor(ctx),
		AssessedAt: now,
	}
	if err := s.store.SaveEntityAssessment(ctx, assessment); err != nil {
		s.logger.ErrorContext(ctx, "persist entity assessment failed",
			"entity_id", entityID,
			"error", err,
		)
		return scoring.EntityRiskResult{}, fmt.Errorf("persist entity assessment: %w", err)
	}

	if err := s.emitComplianceEvent(ctx, audit.Event{
		Timestamp:   now,
		Subject:     entityID.String(),
		SubjectType: "entity",
		Action:      string(audit.EventEntityRiskAssessed),
		Actor:       assessment.Actor,
		Outcome:     string(result.Band),
		Reason:      firstReason(result.Explainability),
		RequestID:   requestcontext.RequestID(ctx),
	}); err != nil {
		return scoring.EntityRiskResult{}, err
	}

	s.metrics.IncEntityEvaluation(string(result.Band))
	s.metrics.ObserveEvaluateLatency("entity", time.Since(start))
	return result, nil
}

// LatestCustomer returns the most recent stored assessment for a customer.
func (s *Service) LatestCustomer(ctx context.Context, customerID id.CustomerID) (CustomerAssessment, error) {
	return s.store.LatestCustomerAssessment(ctx, customerID)
}

// LatestEntity returns the most recent stored assessment for an entity.
func (s *Service) LatestEntity(ctx context.Context, entityID id.EntityID) (EntityAssessment, error) {
	return s.store.LatestEntityAssessment(ctx, entityID)
}

// lookupAssociateRisk resolves one associate's latest stored risk,
// cache-first. Absence of any stored assessment is a normal outcome; the
// scorer assigns such associates the default risk.
func (s *Service) lookupAssociateRisk(ctx context.Context, customerID id.CustomerID) (scoring.AssociateRisk, bool) {
	if risk, ok := s.cache.Get(ctx, customerID); ok {
		s.metrics.IncCacheLookup("hit")
		return risk, true
	}
	s.metrics.IncCacheLookup("miss")

	assessment, err := s.store.LatestCustomerAssessment(ctx, customerID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.logger.WarnContext(ctx, "associate risk lookup failed",
				"customer_id", customerID,
				"error", err,
			)
		}
		return scoring.AssociateRisk{}, false
	}

	risk := scoring.AssociateRisk{
		Score: assessment.Result.OverallScore,
		Band:  assessment.Result.Category,
	}
	s.cache.Set(ctx, customerID, risk)
	return risk, true
}

func (s *Service) emitComplianceEvent(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "compliance audit failed", err)
	}
	return nil
}

func flagSummary(flags []scoring.RedFlag) string {
	if len(flags) == 0 {
		return ""
	}
	summary := flags[0].Flag
	for _, flag := range flags[1:] {
		summary += "," + flag.Flag
	}
	return summary
}

func firstReason(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	return reasons[0]
}
