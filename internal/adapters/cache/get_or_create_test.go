package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/cache"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	caches := []struct {
		name string
		new  func(t *testing.T) cache.Cache[string]
	}{
		{
			name: "basic",
			new: func(t *testing.T) cache.Cache[string] {
				return cache.NewBasicCache[string]()
			},
		},
		{
			name: "ttl",
			new: func(t *testing.T) cache.Cache[string] {
				c, stop := cache.NewTTLCache[string](time.Hour)
				t.Cleanup(stop)
				return c
			},
		},
	}

	for _, c := range caches {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			t.Run("miss then hit", func(t *testing.T) {
				t.Parallel()

				store := c.new(t)
				calls := 0
				create := func() (string, error) {
					calls++
					return "game", nil
				}

				data, created, err := cache.GetOrCreate(t.Context(), store, "key", create)
				require.NoError(t, err)
				require.True(t, created)
				require.Equal(t, "game", data)

				data, created, err = cache.GetOrCreate(t.Context(), store, "key", create)
				require.NoError(t, err)
				require.False(t, created)
				require.Equal(t, "game", data)
				require.Equal(t, 1, calls)
			})

			t.Run("failed create releases the claim", func(t *testing.T) {
				t.Parallel()

				store := c.new(t)
				_, _, err := cache.GetOrCreate(t.Context(), store, "key", func() (string, error) {
					return "", errors.New("unavailable")
				})
				require.Error(t, err)

				data, created, err := cache.GetOrCreate(t.Context(), store, "key", func() (string, error) {
					return "second", nil
				})
				require.NoError(t, err)
				require.True(t, created)
				require.Equal(t, "second", data)
			})

			t.Run("invalidate", func(t *testing.T) {
				t.Parallel()

				store := c.new(t)
				_, _, err := cache.GetOrCreate(t.Context(), store, "key", func() (string, error) { return "old", nil })
				require.NoError(t, err)

				cache.Invalidate(store, "key")

				data, created, err := cache.GetOrCreate(t.Context(), store, "key", func() (string, error) { return "new", nil })
				require.NoError(t, err)
				require.True(t, created)
				require.Equal(t, "new", data)
			})
		})
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	t.Parallel()

	for name, newStore := range map[string]func(t *testing.T) cache.Cache[int]{
		"basic": func(t *testing.T) cache.Cache[int] {
			return cache.NewBasicCache[int]()
		},
		"ttl": func(t *testing.T) cache.Cache[int] {
			c, stop := cache.NewTTLCache[int](time.Hour)
			t.Cleanup(stop)
			return c
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			var calls atomic.Int32
			release := make(chan struct{})
			create := func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			}

			var wg sync.WaitGroup
			results := make([]int, 5)
			for i := range results {
				wg.Add(1)
				go func() {
					defer wg.Done()
					data, _, err := cache.GetOrCreate(context.Background(), store, "key", create)
					if err == nil {
						results[i] = data
					}
				}()
			}

			time.Sleep(100 * time.Millisecond)
			close(release)
			wg.Wait()

			require.Equal(t, int32(1), calls.Load())
			require.Equal(t, []int{42, 42, 42, 42, 42}, results)
		})
	}
}

func TestGetOrCreateGivesUpWhenCancelled(t *testing.T) {
	t.Parallel()

	store, stop := cache.NewTTLCache[int](time.Hour)
	defer stop()

	release := make(chan struct{})
	defer close(release)
	go func() {
		_, _, _ = cache.GetOrCreate(context.Background(), store, "key", func() (int, error) {
			<-release
			return 1, nil
		})
	}()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, _, err := cache.GetOrCreate(ctx, store, "key", func() (int, error) { return 2, nil })
	require.ErrorIs(t, err, context.Canceled)
}
