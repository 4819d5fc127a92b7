package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
	// Name labels rejections in metrics
	Name string
}

// RateLimiter enforces a fixed window limit per user in Redis.
type RateLimiter struct {
	redis   redis.Cmdable
	config  RateLimitConfig
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient redis.Cmdable, config RateLimitConfig, m *metrics.Collector, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:   redisClient,
		config:  config,
		metrics: m,
		logger:  logger.Named("rate_limit"),
	}
}

// NewPantryWriteLimiter limits pantry updates and deletions per user.
func NewPantryWriteLimiter(redisClient redis.Cmdable, limit int, window time.Duration, m *metrics.Collector, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:pantry_write",
		Name:      "pantry_write",
	}, m, logger)
}

// Middleware returns a Gin middleware that enforces the limit for the
// authenticated user. Redis failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			abortWithError(c, apperrors.Unauthorized("user not authenticated"))
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), userID.String())
		if err != nil {
			rl.logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rl.metrics.ObserveRateLimited(rl.config.Name)
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			abortWithError(c, apperrors.New(apperrors.CodeTooManyRequests,
				fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window)))
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request for key and reports whether it fits the window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// GlobalRateLimit is a process wide token bucket. A non-positive rps
// disables it.
func GlobalRateLimit(rps float64, burst int, m *metrics.Collector) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			m.ObserveRateLimited("global")
			c.Header("Retry-After", "1")
			abortWithError(c, apperrors.New(apperrors.CodeTooManyRequests, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}
