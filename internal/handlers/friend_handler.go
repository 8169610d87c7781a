package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/internal/middleware"
	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/security"
	"github.com/mroshb/game_journal/pkg/errors"
)

type createFriendRequestBody struct {
	ToUserID   uint   `json:"to_user_id"`
	ToUsername string `json:"to_username"`
}

type createdFriendRequest struct {
	ID        uint                       `json:"id"`
	Status    models.FriendRequestStatus `json:"status"`
	CreatedAt time.Time                  `json:"created_at"`
}

type pendingRequestsResponse struct {
	Incoming []models.FriendRequestView `json:"incoming"`
	Outgoing []models.FriendRequestView `json:"outgoing"`
}

type usersResponse struct {
	Results []models.MiniUser `json:"results"`
}

// CreateFriendRequest handles POST /friends/requests/
func (h *HandlerManager) CreateFriendRequest(c *fiber.Ctx) error {
	var body createFriendRequestBody
	if err := c.BodyParser(&body); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid request body")
	}

	ctx := c.UserContext()
	viewerID := middleware.UserID(c)

	var (
		req *models.FriendRequest
		err error
	)
	switch {
	case body.ToUserID != 0:
		req, err = h.FriendSvc.Create(ctx, viewerID, body.ToUserID)
	case body.ToUsername != "":
		req, err = h.FriendSvc.SendRequest(ctx, viewerID, security.SanitizeString(body.ToUsername))
	default:
		return errors.New(errors.ErrCodeValidation, "to_user_id is required")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(createdFriendRequest{
		ID:        req.ID,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
	})
}

// ListFriendRequests handles GET /friends/requests/
func (h *HandlerManager) ListFriendRequests(c *fiber.Ctx) error {
	pending, err := h.FriendSvc.ListPending(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(pendingRequestsResponse{
		Incoming: models.FriendRequestViews(pending.Incoming),
		Outgoing: models.FriendRequestViews(pending.Outgoing),
	})
}

// AcceptFriendRequest handles POST /friends/requests/:id/accept/
func (h *HandlerManager) AcceptFriendRequest(c *fiber.Ctx) error {
	return h.respondToRequest(c, h.FriendSvc.Accept)
}

// DeclineFriendRequest handles POST /friends/requests/:id/decline/
func (h *HandlerManager) DeclineFriendRequest(c *fiber.Ctx) error {
	return h.respondToRequest(c, h.FriendSvc.Decline)
}

// CancelFriendRequest handles POST /friends/requests/:id/cancel/
func (h *HandlerManager) CancelFriendRequest(c *fiber.Ctx) error {
	return h.respondToRequest(c, h.FriendSvc.Cancel)
}

type transitionFunc func(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error)

func (h *HandlerManager) respondToRequest(c *fiber.Ctx, transition transitionFunc) error {
	requestID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || requestID == 0 {
		return errors.New(errors.ErrCodeNotFound, "friend request not found")
	}

	req, err := transition(c.UserContext(), uint(requestID), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(req.View())
}

// ListMyFriends handles GET /friends/
func (h *HandlerManager) ListMyFriends(c *fiber.Ctx) error {
	friends, err := h.FriendSvc.Friends(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(usersResponse{Results: models.MiniUsers(friends)})
}

// ListUserFriends handles GET /friends/:username/
func (h *HandlerManager) ListUserFriends(c *fiber.Ctx) error {
	friends, err := h.FriendSvc.FriendsOf(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(usersResponse{Results: models.MiniUsers(friends)})
}

// Unfriend handles DELETE /friends/:username/
func (h *HandlerManager) Unfriend(c *fiber.Ctx) error {
	if err := h.FriendSvc.Unfriend(c.UserContext(), middleware.UserID(c), c.Params("username")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FriendshipStatus handles GET /friends/status/:username/
func (h *HandlerManager) FriendshipStatus(c *fiber.Ctx) error {
	rel, err := h.RelationshipSvc.StatusByUsername(c.UserContext(), middleware.UserID(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(rel)
}
