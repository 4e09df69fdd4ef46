// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gooddrive/autoparts-backend/internal/config"
	redisdb "github.com/gooddrive/autoparts-backend/internal/infrastructure/database/redis"
)

// RateLimit implements a per-IP fixed window limit backed by Redis. When
// Redis is unreachable the request is allowed through.
func RateLimit(cfg *config.Config, cache *redisdb.Client) gin.HandlerFunc {
	limit := cfg.Security.RateLimitPerMinute

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		count, err := cache.Incr(ctx, key)
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			if err := cache.Expire(ctx, key, time.Minute); err != nil {
				c.Next()
				return
			}
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		c.Next()
	}
}
