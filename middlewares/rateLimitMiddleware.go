package middlewares

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimiter counts requests per client IP in a fixed redis window.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := rateLimitKeyPrefix + c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	// First request of a window.
	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count > rl.limit {
		abortRateLimited(c, rl.window)
		return
	}
	c.Next()
}

// LocalRateLimiter is the in-process fallback when no redis is configured:
// a token bucket per client IP refilling limit tokens per window.
type LocalRateLimiter struct {
	limit  int64
	window time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalRateLimiter(limit int64, window time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:    limit,
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *LocalRateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[ip]
	if !ok {
		every := rl.window / time.Duration(max(rl.limit, 1))
		l = rate.NewLimiter(rate.Every(every), int(max(rl.limit, 1)))
		rl.limiters[ip] = l
	}
	return l
}

func (rl *LocalRateLimiter) RateLimitMiddleware(c *gin.Context) {
	if !rl.limiterFor(c.ClientIP()).Allow() {
		abortRateLimited(c, rl.window)
		return
	}
	c.Next()
}

func abortRateLimited(c *gin.Context, window time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error":   fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(window.Seconds())),
	})
}
