package dedup

import (
	"context"
	"sync"
	"time"
)

// Store remembers which event keys have already produced a calendar event.
// Implementations must be safe for concurrent use.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, at time.Time) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryStore is a map-backed Store for the memory backend and tests. State
// does not survive a restart, so it only protects against duplicates within
// one process lifetime.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]time.Time)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[key]

	return ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[key] = at

	return nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64

	for key, at := range s.seen {
		if at.Before(cutoff) {
			delete(s.seen, key)
			removed++
		}
	}

	return removed, nil
}
