package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/security"
	"github.com/mroshb/game_journal/pkg/errors"
)

const (
	localUserID  = "user_id"
	localTraceID = "trace_id"
)

// UserLookup confirms that a token's subject still exists.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// RequireAuth accepts "Authorization: Bearer <jwt>" and stores the caller's
// user id for handlers.
func RequireAuth(secret string, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errors.New(errors.ErrCodeUnauthorized, "authentication credentials were not provided")
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return errors.New(errors.ErrCodeUnauthorized, "invalid authorization header")
		}

		claims, err := security.ValidateJWT(strings.TrimSpace(token), secret)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeUnauthorized, "invalid or expired token")
		}

		if _, err := users.GetUserByID(c.UserContext(), claims.UserID); err != nil {
			if errors.HasCode(err, errors.ErrCodeNotFound) {
				return errors.New(errors.ErrCodeUnauthorized, "user not found")
			}
			return err
		}

		c.Locals(localUserID, claims.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated caller, or 0 outside RequireAuth.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}
