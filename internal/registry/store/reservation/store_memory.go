package reservation

import (
	"context"
	"sync"

	"namereg/internal/registry/models"
	"namereg/pkg/platform/sentinel"
)

// InMemory keeps at most one reservation per canonical key.
type InMemory struct {
	mu           sync.RWMutex
	reservations map[string]models.Reservation
}

func NewInMemory() *InMemory {
	return &InMemory{reservations: make(map[string]models.Reservation)}
}

func (s *InMemory) Get(_ context.Context, key string) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reservations[key]; ok {
		return &r, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Put(_ context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.Key] = *r
	return nil
}

// Delete removes the reservation for key. Deleting an absent key is a no-op;
// the claim path deletes after its own existence check.
func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reservations, key)
	return nil
}
