package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SubmitLimiter counts submissions per tenant within a fixed window.
type SubmitLimiter interface {
	// Allow records one attempt and reports whether it is within the limit,
	// plus how long until the window resets.
	Allow(ctx context.Context, tenantID string) (bool, time.Duration, error)
	// Refund gives back one attempt of the current window.
	Refund(ctx context.Context, tenantID string) error
}

// RedisSubmitLimiter keeps one counter per tenant that expires with the window.
type RedisSubmitLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisSubmitLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisSubmitLimiter {
	return &RedisSubmitLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *RedisSubmitLimiter) Allow(ctx context.Context, tenantID string) (bool, time.Duration, error) {
	key := l.prefix + ":" + tenantID

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	// TTL is set only on the first increment so the window does not slide.
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count > int64(l.limit) {
		retryAfter, _ := l.client.TTL(ctx, key).Result()
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// refundScript decrements the counter only while its window is still open.
var refundScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 and tonumber(redis.call("GET", KEYS[1])) > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

func (l *RedisSubmitLimiter) Refund(ctx context.Context, tenantID string) error {
	return refundScript.Run(ctx, l.client, []string{l.prefix + ":" + tenantID}).Err()
}

// MemorySubmitLimiter is the single-process counterpart used without Redis.
type MemorySubmitLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*counterWindow
	now     func() time.Time
}

type counterWindow struct {
	count   int
	expires time.Time
}

func NewMemorySubmitLimiter(limit int, window time.Duration) *MemorySubmitLimiter {
	return &MemorySubmitLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*counterWindow),
		now:     time.Now,
	}
}

func (l *MemorySubmitLimiter) Allow(_ context.Context, tenantID string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[tenantID]
	if !ok || !now.Before(w.expires) {
		w = &counterWindow{expires: now.Add(l.window)}
		l.windows[tenantID] = w
	}
	w.count++
	if w.count > l.limit {
		return false, w.expires.Sub(now), nil
	}
	return true, 0, nil
}

func (l *MemorySubmitLimiter) Refund(_ context.Context, tenantID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[tenantID]
	if ok && l.now().Before(w.expires) && w.count > 0 {
		w.count--
	}
	return nil
}

// SubmitRateLimiter rejects submissions beyond the tenant's allowance with 429.
// Only successful submissions use up the allowance.
func SubmitRateLimiter(limiter SubmitLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := TenantID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), tenantID)
		if err != nil {
			log.WithError(err).Error("Submission rate limiter failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limiter unavailable"})
			c.Abort()
			return
		}
		if !allowed {
			log.Warnf("Submission rate limit exceeded for tenant %s", tenantID)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := limiter.Refund(context.WithoutCancel(c.Request.Context()), tenantID); err != nil {
				log.WithError(err).WithField("tenant", tenantID).Warn("Failed to refund submission attempt")
			}
		}
	}
}
