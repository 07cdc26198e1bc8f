// Package kv provides the persistent key-value slot backing the sync queue.
package kv

import "sync"

// Store is a minimal durable key-value slot. A missing key is reported
// through the found flag, not an error.
type Store interface {
	// Get returns the value for key, and whether it exists.
	Get(key string) (value string, found bool, err error)

	// Set persists value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is a no-op.
	Remove(key string) error
}

// MemoryStore is an in-process Store. It does not survive restarts and
// exists for tests and ephemeral setups.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
