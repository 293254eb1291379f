package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enterprise/fraud-pipeline/configs"
)

// CacheClient provides Redis-backed caching and locking primitives. H's
// read-through cache and per-identity submission lock (spec.md §5) both
// share this connection.
type CacheClient struct {
	client *redis.Client
}

// NewCacheClient creates a new cache client.
func NewCacheClient(cfg configs.RedisConfig) (*CacheClient, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CacheClient{client: client}, nil
}

// Set sets a value in the cache.
func (c *CacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from the cache.
func (c *CacheClient) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes keys from the cache.
func (c *CacheClient) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// SetNX sets a value only if it doesn't exist: the primitive underlying
// the per-identity lock that serializes PG's duplicate check and H's
// commit, per spec.md §5.
func (c *CacheClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, key, data, expiration).Result()
}

// Close closes the cache client.
func (c *CacheClient) Close() error {
	return c.client.Close()
}

// Lock acquires the per-identity lock used to serialize duplicate-check
// and commit for a single identity (spec.md §5's ordering guarantee). It
// blocks, retrying every 25ms, until acquired or ctx is done. The lock
// value is a constant and the returned release func deletes the key
// unconditionally.
func (c *CacheClient) Lock(ctx context.Context, identityKey string, ttl time.Duration) (func(), error) {
	key := "lock:identity:" + identityKey
	for {
		ok, err := c.SetNX(ctx, key, "1", ttl)
		if err != nil {
			return nil, fmt.Errorf("acquiring identity lock: %w", err)
		}
		if ok {
			return func() { _ = c.Delete(context.Background(), key) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}
