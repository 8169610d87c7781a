package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/repositories"
)

// FeedPage is one offset/limit window of a feed.
type FeedPage struct {
	Events  []models.ActivityEvent
	Limit   int
	Offset  int
	HasMore bool
}

// FeedService builds the viewer's activity feed from their own events and
// those of their current friends.
type FeedService struct {
	activityRepo *repositories.ActivityRepository
	defaultLimit int
	maxLimit     int
}

func NewFeedService(activityRepo *repositories.ActivityRepository, defaultLimit, maxLimit int) *FeedService {
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit < 1 || defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &FeedService{
		activityRepo: activityRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ParsePage reads raw limit and offset query values. Present values are
// clamped to 1..max and >= 0; empty or unparsable ones fall back to the
// defaults.
func (s *FeedService) ParsePage(rawLimit, rawOffset string) (limit, offset int) {
	limit = s.defaultLimit
	if v, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil {
		limit = s.clampLimit(v)
	}
	if v, err := strconv.Atoi(strings.TrimSpace(rawOffset)); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func (s *FeedService) clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// Feed returns events newest first with ties broken by id. HasMore is set
// when the page came back full.
func (s *FeedService) Feed(ctx context.Context, viewerID uint, limit, offset int) (*FeedPage, error) {
	limit = s.clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	events, err := s.activityRepo.Feed(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &FeedPage{
		Events:  events,
		Limit:   limit,
		Offset:  offset,
		HasMore: len(events) == limit,
	}, nil
}
