package content

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-parametric/internal/kv"
)

const cachePrefix = "content:"

// CachedSource serves resources from a store, filling it from next on a
// miss. Entries never expire; failed fetches are not cached.
type CachedSource struct {
	next  Source
	store kv.Store
}

// NewCachedSource wraps next with store.
func NewCachedSource(next Source, store kv.Store) *CachedSource {
	return &CachedSource{next: next, store: store}
}

// CacheKey returns the store key for locator.
func CacheKey(locator string) string {
	sum := blake2b.Sum256([]byte(locator))
	return cachePrefix + hex.EncodeToString(sum[:16])
}

func (s *CachedSource) Fetch(ctx context.Context, locator string) (string, error) {
	key := CacheKey(locator)

	data, err := s.store.Get(key)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		slog.Warn("content cache read failed", "locator", locator, "error", err)
	}

	body, err := s.next.Fetch(ctx, locator)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(key, []byte(body)); err != nil {
		slog.Warn("content cache write failed", "locator", locator, "error", err)
	}
	return body, nil
}

// Invalidate drops the cached copy of locator.
func (s *CachedSource) Invalidate(locator string) error {
	return s.store.Delete(CacheKey(locator))
}
