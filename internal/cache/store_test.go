package cache

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreGetSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "article:k1", []byte("v1")))

	got, err := s.Get(ctx, "article:k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestRedisStoreGetAbsent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "article:none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreListKeysHonorsPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "article:a", []byte("1")))
	require.NoError(t, s.Set(ctx, "article:b", []byte("2")))
	require.NoError(t, s.Set(ctx, "article-meta", []byte("3")))
	require.NoError(t, s.Set(ctx, "other:c", []byte("4")))

	keys, err := s.ListKeys(ctx, "article:")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"article:a", "article:b"}, keys)
}

func TestRedisStoreDeleteMany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "article:a", []byte("1")))
	require.NoError(t, s.Set(ctx, "article:b", []byte("2")))
	require.NoError(t, s.Set(ctx, "article:c", []byte("3")))

	require.NoError(t, s.DeleteMany(ctx, []string{"article:a", "article:c"}))
	require.NoError(t, s.DeleteMany(ctx, nil))

	keys, err := s.ListKeys(ctx, "article:")
	require.NoError(t, err)
	assert.Equal(t, []string{"article:b"}, keys)
}

func TestRedisStoreDeleteAbsent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Delete(context.Background(), "article:none"))
}

func TestNewRedisClientRequiresAddress(t *testing.T) {
	_, err := NewRedisClient(RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyAddress)
}
