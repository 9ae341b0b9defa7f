package records

import (
	"context"
	"sync"
	"time"

	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
)

// InMemoryStore keeps fact records in process memory. Used by unit tests and
// local runs without Postgres.
type InMemoryStore struct {
	mu           sync.RWMutex
	customers    map[id.CustomerID]Customer
	transactions map[id.TransactionID]Transaction
	entities     map[id.EntityID]LegalEntity
	associates   map[id.EntityID][]AssociateLink
	trainings    []TrainingRecord
	policies     []PolicyDocument
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		customers:    make(map[id.CustomerID]Customer),
		transactions: make(map[id.TransactionID]Transaction),
		entities:     make(map[id.EntityID]LegalEntity),
		associates:   make(map[id.EntityID][]AssociateLink),
	}
}

func (s *InMemoryStore) SaveCustomer(_ context.Context, customer Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
	return nil
}

func (s *InMemoryStore) GetCustomer(_ context.Context, customerID id.CustomerID) (Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers[customerID]
	if !ok {
		return Customer{}, dErrors.New(dErrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

func (s *InMemoryStore) SaveTransaction(_ context.Context, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[txn.ID] = txn
	return nil
}

func (s *InMemoryStore) GetTransaction(_ context.Context, transactionID id.TransactionID) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return Transaction{}, dErrors.New(dErrors.CodeNotFound, "transaction not found")
	}
	return txn, nil
}

func (s *InMemoryStore) LatestTransactionForCustomer(_ context.Context, customerID id.CustomerID) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest Transaction
	found := false
	for _, txn := range s.transactions {
		if txn.CustomerID != customerID {
			continue
		}
		if !found || txn.OccurredAt.After(latest.OccurredAt) {
			latest = txn
			found = true
		}
	}
	if !found {
		return Transaction{}, dErrors.New(dErrors.CodeNotFound, "no transaction for customer")
	}
	return latest, nil
}

func (s *InMemoryStore) SaveEntity(_ context.Context, entity LegalEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity
	return nil
}

func (s *InMemoryStore) GetEntity(_ context.Context, entityID id.EntityID) (LegalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[entityID]
	if !ok {
		return LegalEntity{}, dErrors.New(dErrors.CodeNotFound, "entity not found")
	}
	return entity, nil
}

func (s *InMemoryStore) AddAssociate(_ context.Context, link AssociateLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associates[link.EntityID] = append(s.associates[link.EntityID], link)
	return nil
}

func (s *InMemoryStore) ListAssociates(_ context.Context, entityID id.EntityID) ([]AssociateLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AssociateLink{}, s.associates[entityID]...), nil
}

func (s *InMemoryStore) SaveTraining(_ context.Context, record TrainingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainings = append(s.trainings, record)
	return nil
}

func (s *InMemoryStore) HasTrainingSince(_ context.Context, cutoff time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.trainings {
		if !record.CompletedAt.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) SavePolicy(_ context.Context, doc PolicyDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = append(s.policies, doc)
	return nil
}

func (s *InMemoryStore) PolicyExists(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies) > 0, nil
}
