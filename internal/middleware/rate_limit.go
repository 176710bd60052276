package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-user rate limiter middleware instance.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", identifier, rateLimitSubject(c))
		},
	})
}

// rateLimitSubject keys by the authenticated user, falling back to the client IP.
func rateLimitSubject(c *fiber.Ctx) string {
	value := c.Locals("user_id")
	if value == nil {
		return c.IP()
	}
	userID := fmt.Sprintf("%v", value)
	if userID == "" || userID == "0" {
		return c.IP()
	}
	return "user:" + userID
}
