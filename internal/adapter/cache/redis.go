package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/ports"
)

// RedisCache stores values under a common key prefix so several services can share a database.
type RedisCache struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisCache(url, prefix string, log *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Successfully connected to Redis", zap.String("addr", opts.Addr), zap.String("prefix", prefix))
	return &RedisCache{
		client: client,
		prefix: prefix,
		log:    log,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrCacheMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, expiration).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// New returns a Redis cache for url, or a local cache when url is empty or Redis cannot be
// reached.
func New(url, prefix string, log *zap.Logger) ports.Cache {
	if url != "" {
		rc, err := NewRedisCache(url, prefix, log)
		if err == nil {
			return rc
		}
		log.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
	}
	return NewLocalCache(time.Minute, 0, log)
}
