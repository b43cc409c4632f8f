package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first mark succeeds", func(t *testing.T) {
		first, err := store.MarkProcessed(ctx, "invoice-payment:abc", time.Minute)
		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("duplicate mark is rejected", func(t *testing.T) {
		first, err := store.MarkProcessed(ctx, "invoice-payment:abc", time.Minute)
		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		first, err := store.MarkProcessed(ctx, "invoice-payment:def", time.Minute)
		require.NoError(t, err)
		assert.True(t, first)
	})
}

func TestInMemoryIdempotencyStore_Expiration(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "short-lived", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, first)

	time.Sleep(20 * time.Millisecond)

	// Expired entry behaves like a fresh key
	processed, err := store.IsProcessed(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, processed)

	first, err = store.MarkProcessed(ctx, "short-lived", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "seen", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "seen")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := store.MarkProcessed(ctx, "contested-key", time.Minute)
			require.NoError(t, err)
			if first {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly one concurrent request wins the key
	assert.Equal(t, 1, winners)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "payment-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, store.Release(ctx, "payment-1"))

	// The key can be claimed again after release
	first, err = store.MarkProcessed(ctx, "payment-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	// Releasing an unknown key is a no-op
	require.NoError(t, store.Release(ctx, "never-seen"))
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "expired", 1*time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "alive", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
