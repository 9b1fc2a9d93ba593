package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore()
	store.now = clock.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("marks new key", func(t *testing.T) {
		store, _ := newTestStore(t)

		isNew, err := store.MarkProcessed(ctx, "pay-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for live key", func(t *testing.T) {
		store, _ := newTestStore(t)

		isNew, err := store.MarkProcessed(ctx, "pay-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "pay-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("allows the key again after expiry", func(t *testing.T) {
		store, clock := newTestStore(t)

		_, err := store.MarkProcessed(ctx, "pay-3", time.Minute)
		require.NoError(t, err)

		clock.Advance(time.Minute)

		isNew, err := store.MarkProcessed(ctx, "pay-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "pay-4", 10*time.Second)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "pay-4")
	require.NoError(t, err)
	assert.True(t, processed)

	clock.Advance(11 * time.Second)

	processed, err = store.IsProcessed(ctx, "pay-4")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Forget(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.MarkProcessed(ctx, "pay-5", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Forget(ctx, "pay-5"))
	require.NoError(t, store.Forget(ctx, "never-seen"))

	isNew, err := store.MarkProcessed(ctx, "pay-5", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "forgotten key should be accepted again")
}

func TestInMemoryIdempotencyStore_CompleteAndResult(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	isNew, err := store.MarkProcessed(ctx, "pay-7", time.Hour)
	require.NoError(t, err)
	require.True(t, isNew)

	pending, err := store.Result(ctx, "pay-7")
	require.NoError(t, err)
	assert.Nil(t, pending, "in-flight key has no result yet")

	require.NoError(t, store.Complete(ctx, "pay-7", []byte(`{"payment_number":"PAY-7"}`), time.Hour))
	got, err := store.Result(ctx, "pay-7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"payment_number":"PAY-7"}`, string(got))

	isNew, err = store.MarkProcessed(ctx, "pay-7", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "completed key still blocks a second claim")

	clock.Advance(2 * time.Hour)
	got, err = store.Result(ctx, "pay-7")
	require.NoError(t, err)
	assert.Nil(t, got)

	missing, err := store.Result(ctx, "never-seen")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	_, _ = store.MarkProcessed(ctx, "short-1", time.Second)
	_, _ = store.MarkProcessed(ctx, "short-2", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	clock.Advance(2 * time.Second)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	processed, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	const workers = 100
	results := make(chan bool, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "same-key", time.Hour)
			results <- err == nil && isNew
		}()
	}
	wg.Wait()
	close(results)

	newCount := 0
	for ok := range results {
		if ok {
			newCount++
		}
	}
	assert.Equal(t, 1, newCount, "exactly one caller should win the key")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
