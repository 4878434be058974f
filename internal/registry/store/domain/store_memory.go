package domain

import (
	"context"
	"sort"
	"sync"

	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

// InMemory keeps domain records in an ordered map guarded by a lock. Records
// are copied on the way in and out so callers can never mutate stored state
// behind the store's back; every update is a wholesale replace.
type InMemory struct {
	mu      sync.RWMutex
	domains map[string]models.Domain
}

func NewInMemory() *InMemory {
	return &InMemory{domains: make(map[string]models.Domain)}
}

func (s *InMemory) Get(_ context.Context, key string) (*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.domains[key]; ok {
		return &d, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Put(_ context.Context, d *models.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains[d.Key] = *d
	return nil
}

// ListByOwner scans all records and returns those whose owner field matches,
// in key order. Expiry is not consulted here; that is a service concern.
func (s *InMemory) ListByOwner(_ context.Context, owner id.Identity) ([]*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.domains))
	for key, d := range s.domains {
		if d.Owner == owner {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]*models.Domain, 0, len(keys))
	for _, key := range keys {
		d := s.domains[key]
		out = append(out, &d)
	}
	return out, nil
}
