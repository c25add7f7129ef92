package sequence

import (
	"context"
	"sync"
)

// MemoryCounterStore is a process-local CounterStore. Used in tests and when
// Redis is not configured; it does not survive restarts.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryCounterStore constructs an empty store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]int64)}
}

// Incr increments under a single mutex, keeping allocation strictly ordered
// per key.
func (s *MemoryCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}
