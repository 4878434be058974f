package history

import (
	"context"
	"sync"

	"namereg/internal/registry/models"
	"namereg/pkg/platform/sentinel"
)

// InMemory keeps one append-only sequence of history entries per canonical
// key. Append is a read-modify-write of the whole sequence, which is the
// contract the persistence substrate offers; entries are never edited or
// removed.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string][]models.HistoryEntry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string][]models.HistoryEntry)}
}

func (s *InMemory) Append(_ context.Context, key string, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append(s.entries[key], entry)
	return nil
}

// Read returns the full sequence for key in append order, or ErrNotFound if
// the key has never had a history entry.
func (s *InMemory) Read(_ context.Context, key string) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]models.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}
