// Package query implements the client-side query cache shared by all
// dashboard pages: results are cached per logical key, concurrent
// fetches of one key coalesce into a single in-flight request, and
// mutations invalidate their resource key explicitly.
package query

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value for a key from the backend.
type Fetcher func(ctx context.Context) (any, error)

// Store is the per-key query cache. Entries are updated atomically on
// settlement; the last writer for a given key wins. There is no
// cross-key invalidation.
type Store struct {
	group       singleflight.Group
	cache       *keyCache
	stopCleanup chan struct{}
}

func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		cache:       newKeyCache(maxSize, ttl),
		stopCleanup: make(chan struct{}),
	}
}

// Fetch returns the cached value for key when fresh; otherwise it runs
// fetcher, coalescing concurrent calls for the same key into one
// request. When the fetch fails and a stale value is still cached, the
// stale value is returned instead of the error.
func (s *Store) Fetch(ctx context.Context, key string, fetcher Fetcher) (any, error) {
	if value, fresh, ok := s.cache.get(key); ok && fresh {
		slog.DebugContext(ctx, "Query cache hit", "query_key", key)
		return value, nil
	}

	value, err, shared := s.group.Do(key, func() (any, error) {
		v, err := fetcher(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.set(key, v)
		return v, nil
	})
	if err != nil {
		if stale, _, ok := s.cache.get(key); ok {
			slog.WarnContext(ctx, "Query fetch failed, serving stale value",
				"query_key", key, "error", err)
			return stale, nil
		}
		return nil, err
	}

	if shared {
		slog.DebugContext(ctx, "Query request coalesced", "query_key", key)
	}
	return value, nil
}

// Refetch bypasses the cache, runs fetcher, and stores the result.
// Concurrent refetches of the same key still coalesce.
func (s *Store) Refetch(ctx context.Context, key string, fetcher Fetcher) (any, error) {
	s.group.Forget(key)
	value, err, _ := s.group.Do(key, func() (any, error) {
		v, err := fetcher(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.set(key, v)
		return v, nil
	})
	return value, err
}

// Invalidate drops the cached values for the given keys. The next Fetch
// for each key goes to the backend.
func (s *Store) Invalidate(keys ...string) {
	for _, key := range keys {
		s.cache.delete(key)
	}
}

// Size returns the number of cached keys.
func (s *Store) Size() int {
	return s.cache.size()
}

// StartCleanup begins periodic removal of long-expired entries.
func (s *Store) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := s.cache.cleanExpired(); removed > 0 {
					slog.Debug("Query cache cleanup", "entries_removed", removed)
				}
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

// Stop terminates the cleanup goroutine.
func (s *Store) Stop() {
	close(s.stopCleanup)
}

// FetchAs runs Fetch and asserts the cached value to T.
func FetchAs[T any](ctx context.Context, s *Store, key string, fetcher func(ctx context.Context) (T, error)) (T, error) {
	value, err := s.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetcher(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return typed, nil
}

// RefetchAs runs Refetch and asserts the stored value to T.
func RefetchAs[T any](ctx context.Context, s *Store, key string, fetcher func(ctx context.Context) (T, error)) (T, error) {
	value, err := s.Refetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetcher(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return typed, nil
}
