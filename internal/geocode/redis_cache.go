package geocode

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on Redis so multiple client processes can share
// resolved addresses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisCache{client: c, ttl: ttl, ctx: context.Background()}
}

func (r *RedisCache) Get(key string) (string, bool) {
	v, err := r.client.Get(r.ctx, cacheKey(key)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *RedisCache) Set(key, value string) {
	_ = r.client.Set(r.ctx, cacheKey(key), value, r.ttl).Err()
}

func cacheKey(key string) string { return "geocode:addr:" + key }
