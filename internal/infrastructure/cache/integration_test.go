//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisIdempotencyStore_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisIdempotencyStore(client, "")

	isNew, err := store.MarkProcessed(ctx, "pay-42", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "pay-42", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	ttl, err := client.TTL(ctx, DefaultIdempotencyKeyPrefix+"pay-42").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	pending, err := store.Result(ctx, "pay-42")
	require.NoError(t, err)
	assert.Nil(t, pending)

	require.NoError(t, store.Complete(ctx, "pay-42", []byte(`{"payment_number":"PAY-42"}`), time.Minute))
	stored, err := store.Result(ctx, "pay-42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"payment_number":"PAY-42"}`, string(stored))

	require.NoError(t, store.Forget(ctx, "pay-42"))
	processed, err := store.IsProcessed(ctx, "pay-42")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, store.Close())
	require.NoError(t, client.Ping(ctx).Err(), "store must not close the shared client")
}
