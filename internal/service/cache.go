package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/recommend"
)

const (
	catalogVersionKey = "recommend:catalog_version"
	userVersionPrefix = "recommend:user_version:"
)

// RecommendationCache stores computed recommendation lists per user.
//
// Lookup returns the key a later Store must use. The key embeds the catalog
// and user versions read during Lookup, so a list computed before an
// invalidation is never stored where post-invalidation lookups read. An
// empty key means the result must not be stored.
type RecommendationCache interface {
	Lookup(ctx context.Context, userID uuid.UUID) (recs []recommend.Recommendation, key string, hit bool)
	Store(ctx context.Context, key string, recs []recommend.Recommendation)
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
	InvalidateCatalog(ctx context.Context) error
}

// NopRecommendationCache never hits.
type NopRecommendationCache struct{}

func (NopRecommendationCache) Lookup(context.Context, uuid.UUID) ([]recommend.Recommendation, string, bool) {
	return nil, "", false
}
func (NopRecommendationCache) Store(context.Context, string, []recommend.Recommendation) {}
func (NopRecommendationCache) InvalidateUser(context.Context, uuid.UUID) error           { return nil }
func (NopRecommendationCache) InvalidateCatalog(context.Context) error                   { return nil }

// RedisRecommendationCache keeps recommendation lists in Redis. Every Redis
// call goes through a circuit breaker; while it is open the cache behaves as
// a miss.
type RedisRecommendationCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewRedisRecommendationCache(client redis.Cmdable, ttl time.Duration, m *metrics.Collector, logger *zap.Logger) *RedisRecommendationCache {
	logger = logger.Named("recommend_cache")
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "recommendation-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &RedisRecommendationCache{
		client:  client,
		ttl:     ttl,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}
}

func userVersionKey(userID uuid.UUID) string {
	return userVersionPrefix + userID.String()
}

func (c *RedisRecommendationCache) Lookup(ctx context.Context, userID uuid.UUID) ([]recommend.Recommendation, string, bool) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.client.MGet(ctx, catalogVersionKey, userVersionKey(userID)).Result()
	})
	if err != nil {
		c.metrics.ObserveCache("lookup", "error")
		c.logger.Debug("version lookup failed", zap.Error(err))
		return nil, "", false
	}
	versions := res.([]interface{})
	key := fmt.Sprintf("recommend:%s:%s:%s", userID, versionOf(versions[0]), versionOf(versions[1]))

	res, err = c.breaker.Execute(func() (any, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	switch {
	case errors.Is(err, redis.Nil):
		c.metrics.ObserveCache("lookup", "miss")
		return nil, key, false
	case err != nil:
		c.metrics.ObserveCache("lookup", "error")
		return nil, "", false
	}

	var recs []recommend.Recommendation
	if err := json.Unmarshal(res.([]byte), &recs); err != nil {
		c.metrics.ObserveCache("lookup", "corrupt")
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, key, false
	}
	c.metrics.ObserveCache("lookup", "hit")
	return recs, key, true
}

// Store is a no-op for an empty key or a non-positive TTL.
func (c *RedisRecommendationCache) Store(ctx context.Context, key string, recs []recommend.Recommendation) {
	if key == "" || c.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		c.logger.Error("failed to encode recommendations", zap.Error(err))
		return
	}
	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.client.Set(ctx, key, payload, c.ttl).Err()
	})
	if err != nil {
		c.metrics.ObserveCache("store", "error")
		return
	}
	c.metrics.ObserveCache("store", "ok")
}

func (c *RedisRecommendationCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return c.bump(ctx, userVersionKey(userID))
}

func (c *RedisRecommendationCache) InvalidateCatalog(ctx context.Context) error {
	return c.bump(ctx, catalogVersionKey)
}

func (c *RedisRecommendationCache) bump(ctx context.Context, key string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return c.client.Incr(ctx, key).Result()
	})
	if err != nil {
		c.metrics.ObserveCache("invalidate", "error")
		return fmt.Errorf("failed to bump %s: %w", key, err)
	}
	c.metrics.ObserveCache("invalidate", "ok")
	return nil
}

func versionOf(v interface{}) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "0"
}
