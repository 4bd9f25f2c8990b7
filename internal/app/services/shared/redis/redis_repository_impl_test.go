package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*miniredis.Miniredis, *redisRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisRepository(client).(*redisRepository)
}

func TestSetGetDelete(t *testing.T) {
	mr, repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, repo.Delete(ctx, "k"))
	got, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTrySetNX(t *testing.T) {
	_, repo := newTestRepository(t)
	ctx := context.Background()

	ok, err := repo.TrySetNX(ctx, "lock", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TrySetNX(ctx, "lock", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareAndDelete(t *testing.T) {
	mr, repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.TrySetNX(ctx, "lock", "owner-1", time.Minute)
	require.NoError(t, err)

	deleted, err := repo.CompareAndDelete(ctx, "lock", "owner-2")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, mr.Exists("lock"))

	deleted, err = repo.CompareAndDelete(ctx, "lock", "owner-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("lock"))
}

func TestGetReturnsErrorWhenServerDown(t *testing.T) {
	mr, repo := newTestRepository(t)
	mr.Close()

	_, err := repo.Get(context.Background(), "k")
	assert.Error(t, err)
}
