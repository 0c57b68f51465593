package predict

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/logging"
)

// CacheKeyPrefix namespaces cached predictions in Redis.
const CacheKeyPrefix = "loanform:prediction:"

// DefaultCacheTTL is how long a cached prediction is served
const DefaultCacheTTL = 10 * time.Minute

// Cache stores serialised results by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at addr.
func NewRedisCache(addr string) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Ping checks that Redis is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the value stored at key. A missing key is not an error.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value at key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// CacheKey returns the cache key for p: the prefix followed by the hex
// SHA-256 of the payload's JSON encoding.
func CacheKey(p form.Payload) string {
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return CacheKeyPrefix + hex.EncodeToString(sum[:])
}

// CachingPredictor serves repeated payloads from a Cache. Only successful
// results are stored. Cache failures are logged and never fail a prediction.
type CachingPredictor struct {
	next  Predictor
	cache Cache
	ttl   time.Duration
}

// NewCachingPredictor wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachingPredictor(next Predictor, cache Cache, ttl time.Duration) *CachingPredictor {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingPredictor{next: next, cache: cache, ttl: ttl}
}

// Predict implements Predictor.
func (c *CachingPredictor) Predict(ctx context.Context, p form.Payload) (*form.Result, error) {
	key := CacheKey(p)

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		logging.Warn("Prediction cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached form.Result
		if err := json.Unmarshal(data, &cached); err == nil {
			logging.Debug("Prediction served from cache", zap.String("key", key))
			return &cached, nil
		}
		logging.Warn("Discarding unreadable cache entry", zap.String("key", key))
	}

	result, err := c.next.Predict(ctx, p)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err != nil {
		logging.Warn("Prediction could not be cached", zap.Error(fmt.Errorf("encode: %w", err)))
	} else if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		logging.Warn("Prediction cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}
