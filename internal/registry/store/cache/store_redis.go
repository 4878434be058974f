// Package cache provides a redis-backed cache for owner lookups. Lookups are
// the registry's hottest read path; the cache is best-effort and every
// mutating operation invalidates its key, so a hit can never outlive a
// committed ownership change by more than the invalidation call.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

const keyPrefix = "namereg:owner:"

// RedisLookupCache caches canonical key -> owner identity with a TTL.
type RedisLookupCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLookupCache(client *redis.Client, ttl time.Duration) *RedisLookupCache {
	return &RedisLookupCache{client: client, ttl: ttl}
}

func (c *RedisLookupCache) GetOwner(ctx context.Context, key string) (id.Identity, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return id.NilIdentity, sentinel.ErrNotFound
		}
		return id.NilIdentity, fmt.Errorf("cache get owner: %w", err)
	}
	owner, err := id.ParseIdentity(val)
	if err != nil {
		// A corrupt entry behaves like a miss; the caller will repopulate.
		return id.NilIdentity, sentinel.ErrNotFound
	}
	return owner, nil
}

func (c *RedisLookupCache) SetOwner(ctx context.Context, key string, owner id.Identity) error {
	if err := c.client.Set(ctx, keyPrefix+key, owner.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set owner: %w", err)
	}
	return nil
}

// Invalidate drops the cached owner for key. Called after every committed
// claim, transfer, or revoke.
func (c *RedisLookupCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
