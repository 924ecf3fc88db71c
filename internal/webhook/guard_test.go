package webhook

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oms/internal/testutil"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	g := NewMemoryGuard(time.Minute)
	g.now = clock.Now

	first, err := g.Claim(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = g.Claim(ctx, "a")
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, g.Release(ctx, "a"))
	first, _ = g.Claim(ctx, "a")
	assert.True(t, first, "released id can be claimed again")

	clock.Advance(2 * time.Minute)
	first, _ = g.Claim(ctx, "a")
	assert.True(t, first, "expired id can be claimed again")
}

// TestRedisGuard runs against a live server named by OMS_TEST_REDIS_ADDR.
func TestRedisGuard(t *testing.T) {
	addr := os.Getenv("OMS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OMS_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	g := NewRedisGuard(client, time.Minute)
	id := "test-" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = g.Release(ctx, id) })

	first, err := g.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = g.Claim(ctx, id)
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, g.Release(ctx, id))
	first, err = g.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)
}

func TestRedisGuard_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	_, err := NewRedisGuard(client, time.Minute).Claim(context.Background(), "x")
	assert.ErrorContains(t, err, "claim delivery x")
}
