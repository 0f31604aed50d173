package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitesh/velara/pkg/models"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisCollection(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	coll := NewRedisCollection(client, "")

	t.Run("empty key reads as empty list", func(t *testing.T) {
		got, err := coll.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("write stores json under the default key", func(t *testing.T) {
		want := []models.Article{article("a", "A")}
		require.NoError(t, coll.WriteAll(ctx, want))

		assert.True(t, mr.Exists(DefaultRedisKey))
		got, err := coll.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("corrupt value", func(t *testing.T) {
		require.NoError(t, mr.Set(DefaultRedisKey, "oops"))
		_, err := coll.ReadAll(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, NewBlobStore(coll).Ping(ctx))
	})
}

func TestRedisCollectionWithBlobStore(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	s := NewBlobStore(NewRedisCollection(client, "test_articles"))

	require.NoError(t, s.Put(ctx, article("1", "A")))
	require.NoError(t, s.Put(ctx, article("2", "B")))
	require.NoError(t, s.Put(ctx, article("1", "A2")))
	require.NoError(t, s.Delete(ctx, "2"))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A2", got[0].Title)
}
