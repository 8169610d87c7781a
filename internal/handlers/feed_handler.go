package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/internal/middleware"
	"github.com/mroshb/game_journal/internal/models"
)

const HeaderHasMore = "X-Has-More"

// Feed handles GET /feed/?limit=&offset=
func (h *HandlerManager) Feed(c *fiber.Ctx) error {
	limit, offset := h.FeedSvc.ParsePage(c.Query("limit"), c.Query("offset"))

	page, err := h.FeedSvc.Feed(c.UserContext(), middleware.UserID(c), limit, offset)
	if err != nil {
		return err
	}

	views := make([]models.ActivityView, 0, len(page.Events))
	for i := range page.Events {
		views = append(views, page.Events[i].View())
	}

	c.Set(HeaderHasMore, strconv.FormatBool(page.HasMore))
	return c.JSON(views)
}
