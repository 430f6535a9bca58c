package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/zoobzio/clockz"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized advisories.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache on a redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached value or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Cached serves repeated requests from a cache. Entries are keyed by the
// request and the current day, since classification depends on today's
// date. Failed advisories are never stored, and cache errors only cost a
// call to the wrapped advisor.
type Cached struct {
	next  TripAdvisor
	cache Cache
	ttl   time.Duration
	clock clockz.Clock
}

// NewCached wraps next with cache.
func NewCached(next TripAdvisor, cache Cache, ttl time.Duration, clock clockz.Clock) *Cached {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Cached{next: next, cache: cache, ttl: ttl, clock: clock}
}

// Advise returns a cached advisory when one exists for the request.
func (c *Cached) Advise(ctx context.Context, req Request) (*Result, error) {
	key, err := c.key(req)
	if err != nil {
		return c.next.Advise(ctx, req)
	}

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var result Result
		if err := json.Unmarshal(data, &result); err == nil {
			log.WithField("key", key).Debug("Advisory served from cache")
			return &result, nil
		}
	case !errors.Is(err, ErrCacheMiss):
		log.WithFields(log.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Failed to read advisory cache")
	}

	result, err := c.next.Advise(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			log.WithFields(log.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Failed to cache advisory")
		}
	}
	return result, nil
}

func (c *Cached) key(req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(append([]byte(c.clock.Now().Format(DateLayout)+"|"), payload...))
	return fmt.Sprintf("advisory:%s", hex.EncodeToString(sum[:])), nil
}
