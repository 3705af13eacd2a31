package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scedev/parkpermit/internal/config"
)

// RedisCache wraps the redis client used for small, short-lived caches.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache connects to redis with short timeouts. The connection is
// verified lazily; a missing redis degrades caching, not the service.
func NewRedisCache(cfg *config.Config) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisCache{Client: client}
}

// Get returns the cached value, or an empty string on a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set stores a value with a TTL.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// Delete drops a key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}

// Healthy verifies redis connectivity, for the health endpoint.
func (r *RedisCache) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisCache) Close() error {
	return r.Client.Close()
}
