package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/cheevo/internal/logging"
)

// Returns data, created, error
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, bool, error) {
	// Clean up the cache if we claim an entry, but don't set it
	// This allows other callers to try again
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	logger := logging.FromContext(ctx).With(slog.String("key", key))

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true

			logger.DebugContext(ctx, "Getting cache entry", "cache", "miss")

			data, err := create()
			if err != nil {
				var empty T
				return empty, false, fmt.Errorf("failed to create cache entry: %w", err)
			}

			cache.set(key, data)
			set = true

			return data, true, nil
		}

		if result.valid {
			logger.DebugContext(ctx, "Getting cache entry", "cache", "hit")
			return result.data, false, nil
		}

		if ctx.Err() != nil {
			var empty T
			return empty, false, fmt.Errorf("gave up waiting for cache entry: %w", ctx.Err())
		}

		logger.DebugContext(ctx, "Waiting for cache")
		cache.wait(key)
	}
}

// Invalidate drops the entry for key so the next GetOrCreate creates it again
func Invalidate[T any](cache Cache[T], key string) {
	cache.delete(key)
}
