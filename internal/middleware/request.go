package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mroshb/game_journal/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags each request with a trace id, reusing a client supplied
// one when present.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" || len(id) > 64 {
			generated, err := uuid.NewV7()
			if err != nil {
				generated = uuid.New()
			}
			id = generated.String()
		}

		c.Locals(localTraceID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// TraceID returns the id assigned by RequestID.
func TraceID(c *fiber.Ctx) string {
	id, _ := c.Locals(localTraceID).(string)
	return id
}

// Timeout bounds the context handed to services.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AccessLog logs one line per request once the handler chain returns.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusFor(err)
		}

		keysAndValues := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"trace_id", TraceID(c),
		}
		if uid := UserID(c); uid != 0 {
			keysAndValues = append(keysAndValues, "user_id", uid)
		}

		if status >= fiber.StatusInternalServerError {
			logger.Warn("HTTP request", keysAndValues...)
		} else {
			logger.Info("HTTP request", keysAndValues...)
		}
		return err
	}
}
