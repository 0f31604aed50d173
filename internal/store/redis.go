package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nitesh/velara/pkg/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the single key holding the encoded article list.
const DefaultRedisKey = "velara_articles"

// RedisCollection keeps the whole list under one Redis string key, so a
// WriteAll is a single SET.
type RedisCollection struct {
	client *redis.Client
	key    string
}

func NewRedisCollection(client *redis.Client, key string) *RedisCollection {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCollection{client: client, key: key}
}

func (r *RedisCollection) ReadAll(ctx context.Context) ([]models.Article, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.Article{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return decodeArticles(b)
}

func (r *RedisCollection) WriteAll(ctx context.Context, articles []models.Article) error {
	b, err := encodeArticles(articles)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisCollection) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
