package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	t.Run("falls back to in-memory without a client", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)

		store, err := NewIdempotencyStoreFactory(nil, WithLogger(zap.New(core))).CreateStore()
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*InMemoryIdempotencyStore)
		assert.True(t, ok)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("refuses fallback when disabled", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(nil, WithInMemoryFallback(false)).CreateStore()
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}
