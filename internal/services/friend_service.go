package services

import (
	"context"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/mroshb/game_journal/pkg/logger"
)

// FriendService runs the friend request lifecycle.
type FriendService struct {
	friendRepo *repositories.FriendRepository
	userRepo   *repositories.UserRepository
}

func NewFriendService(friendRepo *repositories.FriendRepository, userRepo *repositories.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// PendingRequests groups a user's open requests by direction.
type PendingRequests struct {
	Incoming []models.FriendRequest
	Outgoing []models.FriendRequest
}

// SendRequest creates a PENDING request from senderID to the user named
// targetUsername.
func (s *FriendService) SendRequest(ctx context.Context, senderID uint, targetUsername string) (*models.FriendRequest, error) {
	target, err := s.userRepo.GetUserByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, senderID, target.ID)
}

// Create creates a PENDING request from senderID to targetID.
func (s *FriendService) Create(ctx context.Context, senderID, targetID uint) (*models.FriendRequest, error) {
	req, err := s.friendRepo.CreateRequest(ctx, senderID, targetID)
	if err != nil {
		logFailure("Friend request rejected", err, "from", senderID, "to", targetID)
		return nil, err
	}

	logger.Info("Friend request created", "request_id", req.ID, "from", senderID, "to", targetID)
	return req, nil
}

// Accept moves a request addressed to actorID to ACCEPTED and creates the
// friendship.
func (s *FriendService) Accept(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error) {
	return s.respond(ctx, requestID, actorID, models.FriendRequestAccepted, recipientOnly(actorID))
}

// Decline moves a request addressed to actorID to DECLINED.
func (s *FriendService) Decline(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error) {
	return s.respond(ctx, requestID, actorID, models.FriendRequestDeclined, recipientOnly(actorID))
}

// Cancel moves a request sent by actorID to CANCELED.
func (s *FriendService) Cancel(ctx context.Context, requestID, actorID uint) (*models.FriendRequest, error) {
	return s.respond(ctx, requestID, actorID, models.FriendRequestCanceled, senderOnly(actorID))
}

func (s *FriendService) respond(ctx context.Context, requestID, actorID uint, next models.FriendRequestStatus, guard repositories.RequestGuard) (*models.FriendRequest, error) {
	if _, err := s.friendRepo.Transition(ctx, requestID, next, guard); err != nil {
		logFailure("Friend request transition rejected", err, "request_id", requestID, "actor", actorID, "target_status", next.String())
		return nil, err
	}

	logger.Info("Friend request updated", "request_id", requestID, "actor", actorID, "status", next.String())
	return s.friendRepo.GetRequest(ctx, requestID)
}

func recipientOnly(actorID uint) repositories.RequestGuard {
	return func(req *models.FriendRequest) error {
		if req.ToUserID != actorID {
			return errors.New(errors.ErrCodeForbidden, "only the recipient can respond to this request")
		}
		return nil
	}
}

func senderOnly(actorID uint) repositories.RequestGuard {
	return func(req *models.FriendRequest) error {
		if req.FromUserID != actorID {
			return errors.New(errors.ErrCodeForbidden, "only the sender can cancel this request")
		}
		return nil
	}
}

// Unfriend removes the friendship between actorID and the user named
// otherUsername.
func (s *FriendService) Unfriend(ctx context.Context, actorID uint, otherUsername string) error {
	other, err := s.userRepo.GetUserByUsername(ctx, otherUsername)
	if err != nil {
		return err
	}
	if err := s.friendRepo.RemoveFriendship(ctx, actorID, other.ID); err != nil {
		logFailure("Unfriend rejected", err, "actor", actorID, "other", other.ID)
		return err
	}

	logger.Info("Friendship removed", "actor", actorID, "other", other.ID)
	return nil
}

// ListPending returns the viewer's incoming and outgoing PENDING requests.
func (s *FriendService) ListPending(ctx context.Context, viewerID uint) (*PendingRequests, error) {
	incoming, outgoing, err := s.friendRepo.GetPendingRequests(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return &PendingRequests{Incoming: incoming, Outgoing: outgoing}, nil
}

// Friends returns the friends of userID ordered by username.
func (s *FriendService) Friends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.GetFriends(ctx, userID)
}

// FriendsOf returns the friends of the user named username.
func (s *FriendService) FriendsOf(ctx context.Context, username string) ([]models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.friendRepo.GetFriends(ctx, user.ID)
}

// logFailure keeps expected rejections at debug and everything else at
// error.
func logFailure(msg string, err error, keysAndValues ...interface{}) {
	keysAndValues = append(keysAndValues, "error", err)
	if errors.CodeOf(err) == errors.ErrCodeInternalError {
		logger.Error(msg, keysAndValues...)
		return
	}
	logger.Debug(msg, keysAndValues...)
}
