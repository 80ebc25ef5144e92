package logging

import (
	"context"
	"sync"

	"github.com/kilianp07/slotgate/core/model"
)

// MemoryStore keeps entries in memory. It backs tests and the CLI when no
// persistent store is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.LogEntry
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, e model.LogEntry) error {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q LogQuery) ([]model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.LogEntry
	for _, e := range s.entries {
		if q.Match(e) {
			res = append(res, e)
		}
	}
	return limit(res, q.Limit), nil
}

// Entries returns a copy of everything appended so far.
func (s *MemoryStore) Entries() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LogEntry(nil), s.entries...)
}

func (s *MemoryStore) Close() error { return nil }
