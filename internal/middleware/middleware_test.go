package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/security"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_minimum_32_chars"

type fakeUsers map[uint]bool

func (f fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if !f[id] {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return &models.User{ID: id, Username: fmt.Sprintf("user%d", id)}, nil
}

func newTestApp(limiter Limiter) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestID(), AccessLog(), Timeout(time.Second))

	api := app.Group("/", RequireAuth(testSecret, fakeUsers{1: true, 2: true}))
	if limiter != nil {
		api.Use(RateLimit(limiter))
	}
	api.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c)})
	})
	api.Get("/conflict", func(c *fiber.Ctx) error {
		return errors.New(errors.ErrCodeDuplicateRequest, "a pending friend request already exists").WithRequest(17)
	})
	api.Get("/boom", func(c *fiber.Ctx) error {
		return fmt.Errorf("database exploded")
	})
	return app
}

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	token, err := security.GenerateJWT(userID, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeError(t *testing.T, app *fiber.App, path, auth string) (int, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp(nil)

	tests := []struct {
		name string
		auth string
	}{
		{name: "Missing header", auth: ""},
		{name: "Wrong scheme", auth: "Token abc"},
		{name: "Garbage token", auth: "Bearer not.a.jwt"},
		{name: "Unknown user", auth: bearer(t, 99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := decodeError(t, app, "/whoami", tt.auth)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Equal(t, errors.ErrCodeUnauthorized, body.Error)
		})
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, 2))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	var body map[string]uint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint(2), body["user_id"])
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp(nil)
	auth := bearer(t, 1)

	status, body := decodeError(t, app, "/conflict", auth)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, errors.ErrCodeDuplicateRequest, body.Error)
	assert.Equal(t, uint(17), body.RequestID)

	status, body = decodeError(t, app, "/boom", auth)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, errors.ErrCodeInternalError, body.Error)
	assert.NotContains(t, body.Message, "database")

	status, body = decodeError(t, app, "/missing-route", auth)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, errors.ErrCodeNotFound, body.Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{errors.ErrCodeValidation, 400},
		{errors.ErrCodeInvalidOperation, 400},
		{errors.ErrCodeUnauthorized, 401},
		{errors.ErrCodeForbidden, 403},
		{errors.ErrCodeNotFound, 404},
		{errors.ErrCodeAlreadyFriends, 409},
		{errors.ErrCodeDuplicateRequest, 409},
		{errors.ErrCodeNotPending, 409},
		{errors.ErrCodeRateLimitExceeded, 429},
		{errors.ErrCodeInternalError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(errors.New(tt.code, "x")))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, 100, time.Minute)
	defer limiter.Close()
	app := newTestApp(limiter)
	auth := bearer(t, 1)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	status, body := decodeError(t, app, "/whoami", auth)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, errors.ErrCodeRateLimitExceeded, body.Error)

	// Another user has their own budget.
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, 2))
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequestIDReused(t *testing.T) {
	app := newTestApp(nil)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, 1))
	req.Header.Set(HeaderRequestID, "trace-abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "trace-abc", resp.Header.Get(HeaderRequestID))
}
