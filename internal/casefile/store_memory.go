package casefile

import (
	"context"
	"sync"

	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
)

// InMemoryStore keeps readiness snapshots in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[id.CustomerID][]Snapshot
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[id.CustomerID][]Snapshot)}
}

func (s *InMemoryStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.CustomerID] = append(s.snapshots[snapshot.CustomerID], snapshot)
	return nil
}

func (s *InMemoryStore) LatestSnapshot(_ context.Context, customerID id.CustomerID) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.snapshots[customerID]
	if len(history) == 0 {
		return Snapshot{}, dErrors.New(dErrors.CodeNotFound, "no readiness snapshot for customer")
	}
	latest := history[0]
	for _, snapshot := range history[1:] {
		if snapshot.EvaluatedAt.After(latest.EvaluatedAt) {
			latest = snapshot
		}
	}
	return latest, nil
}
