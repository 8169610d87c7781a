package services

import (
	"context"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/repositories"
)

// RelationshipService derives how a viewer relates to another user.
type RelationshipService struct {
	friendRepo *repositories.FriendRepository
	userRepo   *repositories.UserRepository
}

func NewRelationshipService(friendRepo *repositories.FriendRepository, userRepo *repositories.UserRepository) *RelationshipService {
	return &RelationshipService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// StatusByUsername resolves the target by username and returns Status.
func (s *RelationshipService) StatusByUsername(ctx context.Context, viewerID uint, username string) (*models.Relationship, error) {
	target, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Status(ctx, viewerID, target.ID)
}

// Status checks SELF, FRIENDS, OUTGOING, INCOMING and NONE in that order.
func (s *RelationshipService) Status(ctx context.Context, viewerID, targetID uint) (*models.Relationship, error) {
	if viewerID == targetID {
		return &models.Relationship{Status: models.RelationshipSelf}, nil
	}

	friends, err := s.friendRepo.AreFriends(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if friends {
		return &models.Relationship{Status: models.RelationshipFriends}, nil
	}

	pending, err := s.friendRepo.FindPendingBetween(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return &models.Relationship{Status: models.RelationshipNone}, nil
	}

	rel := &models.Relationship{Status: models.RelationshipIncoming, RequestID: &pending.ID}
	if pending.FromUserID == viewerID {
		rel.Status = models.RelationshipOutgoing
	}
	return rel, nil
}
