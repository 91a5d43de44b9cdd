package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func TestGuard_Lifecycle(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	g := NewGuard(client, time.Hour)

	r, err := g.Reserve(ctx, "lead", "abc")
	require.NoError(t, err)
	assert.Equal(t, Reserved, r.Outcome)

	r, err = g.Reserve(ctx, "lead", "abc")
	require.NoError(t, err)
	assert.Equal(t, InFlight, r.Outcome)

	require.NoError(t, g.Complete(ctx, "lead", "abc", "rec-1"))
	r, err = g.Reserve(ctx, "lead", "abc")
	require.NoError(t, err)
	assert.Equal(t, Replay, r.Outcome)
	assert.Equal(t, "rec-1", r.RecordID)
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"lead:abc"))

	// Scopes do not collide.
	r, err = g.Reserve(ctx, "project", "abc")
	require.NoError(t, err)
	assert.Equal(t, Reserved, r.Outcome)
}

func TestGuard_ReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	g := NewGuard(client, time.Hour)

	_, err := g.Reserve(ctx, "lead", "k")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "lead", "k"))

	r, err := g.Reserve(ctx, "lead", "k")
	require.NoError(t, err)
	assert.Equal(t, Reserved, r.Outcome)
}

func TestGuard_PendingReservationExpires(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	g := NewGuard(client, time.Hour)

	_, err := g.Reserve(ctx, "lead", "k")
	require.NoError(t, err)
	mr.FastForward(pendingTTL + time.Second)

	r, err := g.Reserve(ctx, "lead", "k")
	require.NoError(t, err)
	assert.Equal(t, Reserved, r.Outcome)
}

func TestGuard_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	g := NewGuard(client, 0)
	mr.Close()

	_, err = g.Reserve(context.Background(), "lead", "k")
	assert.Error(t, err)
}
