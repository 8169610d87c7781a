package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/mroshb/game_journal/pkg/logger"
)

// RateLimit applies the per-IP and per-user budgets. Limiter failures let
// the request through.
func RateLimit(l Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		allowed, err := l.AllowIP(ctx, c.IP())
		if err != nil {
			logger.Warn("Rate limiter unavailable", "error", err)
			return c.Next()
		}
		if !allowed {
			return errors.New(errors.ErrCodeRateLimitExceeded, "too many requests, slow down")
		}

		if uid := UserID(c); uid != 0 {
			allowed, err = l.AllowUser(ctx, uid)
			if err != nil {
				logger.Warn("Rate limiter unavailable", "error", err)
				return c.Next()
			}
			if !allowed {
				return errors.New(errors.ErrCodeRateLimitExceeded, "too many requests, slow down")
			}
		}

		return c.Next()
	}
}
