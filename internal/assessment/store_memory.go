package assessment

import (
	"context"
	"sync"

	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
)

type customerKey struct {
	customer    id.CustomerID
	transaction id.TransactionID
}

// InMemoryStore keeps assessments in process memory for tests and local runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	customers map[customerKey]CustomerAssessment
	entities  map[id.EntityID][]EntityAssessment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		customers: make(map[customerKey]CustomerAssessment),
		entities:  make(map[id.EntityID][]EntityAssessment),
	}
}

func (s *InMemoryStore) UpsertCustomerAssessment(_ context.Context, assessment CustomerAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := customerKey{customer: assessment.CustomerID, transaction: assessment.TransactionID}
	s.customers[key] = assessment
	return nil
}

func (s *InMemoryStore) LatestCustomerAssessment(_ context.Context, customerID id.CustomerID) (CustomerAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest CustomerAssessment
	found := false
	for key, assessment := range s.customers {
		if key.customer != customerID {
			continue
		}
		if !found || assessment.AssessedAt.After(latest.AssessedAt) {
			latest = assessment
			found = true
		}
	}
	if !found {
		return CustomerAssessment{}, dErrors.New(dErrors.CodeNotFound, "no assessment for customer")
	}
	return latest, nil
}

func (s *InMemoryStore) SaveEntityAssessment(_ context.Context, assessment EntityAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[assessment.EntityID] = append(s.entities[assessment.EntityID], assessment)
	return nil
}

func (s *InMemoryStore) LatestEntityAssessment(_ context.Context, entityID id.EntityID) (EntityAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.entities[entityID]
	if len(history) == 0 {
		return EntityAssessment{}, dErrors.New(dErrors.CodeNotFound, "no assessment for entity")
	}
	latest := history[0]
	for _, assessment := range history[1:] {
		if assessment.AssessedAt.After(latest.AssessedAt) {
			latest = assessment
		}
	}
	return latest, nil
}
