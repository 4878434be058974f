package owner

import (
	"context"
	"sync"

	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

// InMemory holds the registry's administrative identity. The value is set
// exactly once; Init on an already-initialized store fails with ErrConflict
// so re-bootstrap attempts are visible rather than silent.
type InMemory struct {
	mu    sync.RWMutex
	owner id.Identity
	set   bool
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Get(_ context.Context) (id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return id.NilIdentity, sentinel.ErrNotFound
	}
	return s.owner, nil
}

func (s *InMemory) Init(_ context.Context, owner id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return sentinel.ErrConflict
	}
	s.owner = owner
	s.set = true
	return nil
}
