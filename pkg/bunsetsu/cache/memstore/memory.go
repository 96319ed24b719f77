// Package memstore provides an unbounded in-memory cache storage, mainly
// for tests and short-lived processes.
package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
)

// Store is an in-memory implementation of cache.Storage.
type Store struct {
	mu      sync.RWMutex
	entries map[string]segment.Result
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]segment.Result)}
}

// Get implements cache.Storage.
func (s *Store) Get(ctx context.Context, key string) (segment.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.entries[key]
	return val, ok, nil
}

// Set implements cache.Storage.
func (s *Store) Set(ctx context.Context, key string, val segment.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = val
	return nil
}

// Has implements cache.Storage.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
