// Package lrustore provides a bounded in-process cache storage backed by
// hashicorp's LRU. Suited to long-running processes where the cache must
// not grow without bound.
package lrustore

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
)

// DefaultSize is the entry cap used when none is given.
const DefaultSize = 1024

// Store is an LRU-bounded implementation of cache.Storage. The underlying
// cache is safe for concurrent use.
type Store struct {
	cache *lru.Cache[string, segment.Result]
}

// New creates a store holding at most size entries. size <= 0 selects
// DefaultSize.
func New(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, segment.Result](size)
	if err != nil {
		return nil, err
	}
	return &Store{cache: c}, nil
}

// Get implements cache.Storage.
func (s *Store) Get(ctx context.Context, key string) (segment.Result, bool, error) {
	val, ok := s.cache.Get(key)
	return val, ok, nil
}

// Set implements cache.Storage.
func (s *Store) Set(ctx context.Context, key string, val segment.Result) error {
	s.cache.Add(key, val)
	return nil
}

// Has implements cache.Storage.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	return s.cache.Contains(key), nil
}
