package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/sai-review-api/internal/utils"
)

// RateLimit caps requests per actor (or per client IP for anonymous calls)
// within window. Exhausted callers get a 429 with a Retry-After hint.
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
			actor := userIDString(c.Locals("user_id"))
			if actor == "" {
				actor = "ip:" + c.IP()
			}
			return identifier + ":" + actor
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return utils.Fail(c, fiber.StatusTooManyRequests, "too many requests", fiber.Map{
				"limit":  max,
				"window": window.String(),
			})
		},
	})
}
