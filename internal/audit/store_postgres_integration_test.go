//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"amlcase/internal/audit"
	"amlcase/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *AuditPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "outbox", "audit_events")
	s.Require().NoError(err)
}

func (s *AuditPostgresSuite) TestAppendWritesOutboxAndMaterializes() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	event := audit.Event{
		Category:    audit.CategoryCompliance,
		Timestamp:   now,
		Subject:     "customer-123",
		SubjectType: "customer",
		Action:      string(audit.EventCustomerRiskAssessed),
		Actor:       "officer-1",
		Outcome:     "HIGH",
		RequestID:   "req-1",
	}
	s.Require().NoError(s.store.Append(ctx, event))

	var outboxCount int
	err := s.postgres.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND published_at IS NULL",
		"customer-123",
	).Scan(&outboxCount)
	s.Require().NoError(err)
	s.Equal(1, outboxCount)

	events, err := s.store.ListBySubject(ctx, "customer-123")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.Action, events[0].Action)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal("HIGH", events[0].Outcome)
}

func (s *AuditPostgresSuite) TestListBySubjectOrdersOldestFirst() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i, action := range []audit.AuditEvent{
		audit.EventCustomerRecorded,
		audit.EventCustomerRiskAssessed,
		audit.EventReadinessEvaluated,
	} {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			Category:  action.Category(),
			Timestamp: now.Add(time.Duration(i) * time.Second),
			Subject:   "customer-9",
			Action:    string(action),
		}))
	}

	events, err := s.store.ListBySubject(ctx, "customer-9")
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(string(audit.EventCustomerRecorded), events[0].Action)
	s.Equal(string(audit.EventReadinessEvaluated), events[2].Action)
}
