// Package cache memoizes segmenter results so that repeated parses of the
// same sentence never hit the backend twice. The gateway is
// storage-agnostic; storage backends live in the subpackages memstore,
// lrustore, and sqlitestore.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
)

// Storage persists segmenter results keyed by the derived cache key.
// Implementations must be safe for concurrent use; Get and Set are atomic
// per key but need not be transactional across keys.
type Storage interface {
	Get(ctx context.Context, key string) (segment.Result, bool, error)
	Set(ctx context.Context, key string, val segment.Result) error
	Has(ctx context.Context, key string) (bool, error)
}

// Key derives the deterministic cache key for one backend call. The
// segmenter name salts the key so two backends never share entries, and a
// different language or mode is simply a different key. Entries carry no
// expiry: the same inputs are expected to parse the same way over time.
func Key(segmenter, text, language string, mode segment.Mode) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%s", segmenter, language, mode, text)))
	return hex.EncodeToString(sum[:])
}

// Gateway wraps a storage backend with get-or-compute semantics.
type Gateway struct {
	storage Storage
}

// NewGateway creates a gateway over the given storage. A nil storage
// disables memoization entirely.
func NewGateway(storage Storage) *Gateway {
	return &Gateway{storage: storage}
}

// GetOrCompute returns the stored result for key, or invokes compute,
// stores its result, and returns it. A storage read error falls through
// to compute; a storage write error is surfaced because silently dropping
// cache writes would hide misconfiguration.
func (g *Gateway) GetOrCompute(ctx context.Context, key string, compute func() (segment.Result, error)) (segment.Result, error) {
	if g.storage != nil {
		if val, ok, err := g.storage.Get(ctx, key); err == nil && ok {
			return val, nil
		}
	}
	val, err := compute()
	if err != nil {
		return segment.Result{}, err
	}
	if g.storage != nil {
		if err := g.storage.Set(ctx, key, val); err != nil {
			return segment.Result{}, fmt.Errorf("cache: storing result: %w", err)
		}
	}
	return val, nil
}
