package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/internal/middleware"
)

const appName = "GameJournal"

// NewApp builds the fiber application with every route registered.
func NewApp(h *HandlerManager) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.Timeout(h.Config.GetRequestTimeout()),
	)

	h.Register(app)
	return app
}

// Register mounts the API routes on app.
func (h *HandlerManager) Register(app *fiber.App) {
	app.Get("/ping", h.Ping)

	auth := middleware.RequireAuth(h.Config.JWTSecret, h.UserRepo)
	limit := middleware.RateLimit(h.Limiter)

	friends := app.Group("/friends", auth)
	// Fixed segments go before /:username
	friends.Get("/requests", h.ListFriendRequests)
	friends.Post("/requests", limit, h.CreateFriendRequest)
	friends.Post("/requests/:id/accept", limit, h.AcceptFriendRequest)
	friends.Post("/requests/:id/decline", limit, h.DeclineFriendRequest)
	friends.Post("/requests/:id/cancel", limit, h.CancelFriendRequest)
	friends.Get("/status/:username", h.FriendshipStatus)
	friends.Get("/", h.ListMyFriends)
	friends.Get("/:username", h.ListUserFriends)
	friends.Delete("/:username", limit, h.Unfriend)

	app.Get("/feed", auth, h.Feed)
}

// Ping reports liveness.
func (h *HandlerManager) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "app": appName})
}
