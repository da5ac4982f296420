package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
	// V1Envelope answers 429 in the legacy { success, error } shape
	V1Envelope bool
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "memo:ratelimit:",
		Message:           "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
	}
}

type windowResult struct {
	allowed   bool
	remaining int64
	resetAt   time.Time
}

// slidingWindow records one hit in a sorted set scored by arrival time and
// counts the hits of the last window. Rejected hits are removed again so a
// blocked caller does not extend its own ban.
func slidingWindow(ctx context.Context, client *redis.Client, key string, limit int, window time.Duration, now time.Time) (windowResult, error) {
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()[:8]
	score := float64(now.UnixMilli())
	floor := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", floor)
		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, window+time.Second)
		return nil
	})
	if err != nil {
		return windowResult{}, err
	}

	count := card.Val()
	resetAt := now.Add(window)
	if zs := oldest.Val(); len(zs) > 0 {
		resetAt = time.UnixMilli(int64(zs[0].Score)).Add(window)
	}
	if count > int64(limit) {
		if err := client.ZRem(ctx, key, member).Err(); err != nil {
			return windowResult{}, err
		}
		return windowResult{allowed: false, resetAt: resetAt}, nil
	}
	return windowResult{allowed: true, remaining: int64(limit) - count, resetAt: resetAt}, nil
}

// rateLimitKey identifies the caller: the user id when authenticated, the client IP otherwise
func rateLimitKey(c *gin.Context) string {
	if id := GetUserID(c); id != 0 {
		return "user:" + strconv.FormatUint(id, 10)
	}
	return "ip:" + c.ClientIP()
}

// RateLimit returns a gin middleware that limits each caller to cfg.RequestsPerMinute.
// A nil client disables limiting and redis errors let the request through.
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	const window = time.Minute
	return func(c *gin.Context) {
		if redisClient == nil || cfg.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		key := cfg.KeyPrefix + rateLimitKey(c)
		now := time.Now()
		res, err := slidingWindow(c.Request.Context(), redisClient, key, cfg.RequestsPerMinute, window, now)
		if err != nil {
			logger.Warn("rate limit check failed for %s: %v", key, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
		if res.allowed {
			c.Next()
			return
		}

		retryAfter := int64(res.resetAt.Sub(now).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.resetAt.Unix(), 10))
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		if cfg.V1Envelope {
			common.V1ErrorResponse(c, http.StatusTooManyRequests, cfg.Message)
		} else {
			common.V2ErrorResponse(c, http.StatusTooManyRequests, cfg.Message, nil)
		}
		c.Abort()
	}
}
