package middleware

import (
	"fmt"
	"time"

	"triage_server/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit limits requests per client IP using a Redis sliding window.
func RateLimit(redisClient *redis.Client, requestsPerSecond, burstSize int) fiber.Handler {
	limiter := ratelimit.NewSlidingWindowLimiter(redisClient, requestsPerSecond, burstSize)

	return func(c *fiber.Ctx) error {
		allowed, wait := limiter.Allow(c.Context(), c.IP())
		if !allowed {
			retryAfter := int(wait / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
