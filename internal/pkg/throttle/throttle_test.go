package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedis_LocksAfterMaxAttempts(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	l := NewRedis(client, WithPrefix("test:"), WithMaxAttempts(3), WithWindow(time.Minute))

	for i := range 3 {
		ok, err := l.Allowed(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
		require.NoError(t, l.Fail(ctx, "alice"))
	}

	ok, err := l.Allowed(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, "test:alice").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	ok, err = l.Allowed(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Reset(ctx, "alice"))
	ok, err = l.Allowed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_WindowExpires(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	l := NewRedis(client, WithMaxAttempts(1), WithWindow(time.Second))
	require.NoError(t, l.Fail(ctx, "carol"))

	ok, err := l.Allowed(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := l.Allowed(ctx, "carol")
		return err == nil && ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedis_FailRestoresMissingTTL(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:dave", 7, 0).Err())

	l := NewRedis(client, WithPrefix("test:"), WithMaxAttempts(3), WithWindow(time.Minute))
	require.NoError(t, l.Fail(ctx, "dave"))

	count, err := client.Get(ctx, "test:dave").Int()
	require.NoError(t, err)
	assert.Equal(t, 8, count)

	ttl, err := client.TTL(ctx, "test:dave").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, l.Fail(ctx, "dave"))
	again, err := client.TTL(ctx, "test:dave").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, again, ttl, "later failures keep the window")
}

func TestRedis_ClientError(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	l := NewRedis(client)
	ctx := context.Background()

	_, err := l.Allowed(ctx, "x")
	assert.Error(t, err)
	assert.Error(t, l.Fail(ctx, "x"))
	assert.Error(t, l.Reset(ctx, "x"))
}

func TestNewRedis_IgnoresInvalidOptions(t *testing.T) {
	t.Parallel()

	l := NewRedis(nil, WithMaxAttempts(0), WithWindow(-time.Second))
	assert.Equal(t, defaultMaxAttempts, l.maxAttempts)
	assert.Equal(t, defaultWindow, l.window)
	assert.Equal(t, "throttle:", l.prefix)
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var l Limiter = Noop{}
	ctx := context.Background()

	for range 10 {
		require.NoError(t, l.Fail(ctx, "k"))
	}
	ok, err := l.Allowed(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Reset(ctx, "k"))
}
