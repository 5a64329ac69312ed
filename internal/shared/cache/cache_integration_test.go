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

func startRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
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
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRateLimiter_Integration(t *testing.T) {
	client := startRedis(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, err := limiter.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
		time.Sleep(time.Millisecond)
	}

	allowed, _, err := limiter.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestJSONCache_Integration(t *testing.T) {
	client := startRedis(t)
	c := NewJSONCache(client, "product", time.Minute)
	ctx := context.Background()

	type item struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	require.NoError(t, c.Set(ctx, "p1", item{Name: "Lamp", Price: 19.99}))

	var got item
	require.NoError(t, c.Get(ctx, "p1", &got))
	assert.Equal(t, "Lamp", got.Name)

	require.NoError(t, c.Delete(ctx, "p1"))
	assert.ErrorIs(t, c.Get(ctx, "p1", &got), ErrMiss)
}
