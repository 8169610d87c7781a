package repositories

import (
	"context"
	stderrors "errors"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errPendingTaken marks an insert that lost the pending-pair unique index.
var errPendingTaken = stderrors.New("pending pair taken")

// FriendRepository stores friend requests and friendship edges.
type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// RequestGuard inspects a request row inside the transition transaction.
type RequestGuard func(req *models.FriendRequest) error

// CreateRequest creates a PENDING request from fromID to toID.
func (r *FriendRepository) CreateRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "cannot send a friend request to yourself")
	}

	var created *models.FriendRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Select("id").First(&target, toID).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.ErrCodeNotFound, "user not found")
			}
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load target user")
		}

		// Pending is checked before the edge: an accept committing between
		// the two reads is then seen as an existing friendship.
		existing, err := findPending(tx, fromID, toID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.New(errors.ErrCodeDuplicateRequest, "a pending friend request already exists").WithRequest(existing.ID)
		}

		friends, err := areFriends(tx, fromID, toID)
		if err != nil {
			return err
		}
		if friends {
			return errors.New(errors.ErrCodeAlreadyFriends, "already friends")
		}

		req := &models.FriendRequest{
			FromUserID: fromID,
			ToUserID:   toID,
			Status:     models.FriendRequestPending,
		}
		if err := tx.Omit(clause.Associations).Create(req).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return errPendingTaken
			}
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create friend request")
		}

		created = req
		return nil
	})

	if stderrors.Is(err, errPendingTaken) {
		// A concurrent create for the same pair committed first.
		conflict := errors.New(errors.ErrCodeDuplicateRequest, "a pending friend request already exists")
		if winner, findErr := r.FindPendingBetween(ctx, fromID, toID); findErr == nil && winner != nil {
			conflict.WithRequest(winner.ID)
		}
		return nil, conflict
	}
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Transition moves a PENDING request to next in one transaction. guard
// runs against the freshly read row before anything is written; accepting
// also creates the friendship edge.
func (r *FriendRepository) Transition(ctx context.Context, requestID uint, next models.FriendRequestStatus, guard RequestGuard) (*models.FriendRequest, error) {
	if !models.FriendRequestPending.CanTransitionTo(next) {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "invalid target status "+next.String())
	}

	var result models.FriendRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&result, requestID).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.ErrCodeNotFound, "friend request not found")
			}
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load friend request")
		}

		if guard != nil {
			if err := guard(&result); err != nil {
				return err
			}
		}

		if result.Status != models.FriendRequestPending {
			return errors.New(errors.ErrCodeNotPending, "friend request already "+result.Status.String()).WithRequest(result.ID)
		}

		now := tx.NowFunc()
		update := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", result.ID, models.FriendRequestPending).
			Updates(map[string]interface{}{
				"status":       next,
				"pending_pair": nil,
				"responded_at": now,
			})
		if update.Error != nil {
			return errors.Wrap(update.Error, errors.ErrCodeInternalError, "failed to update friend request")
		}
		if update.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotPending, "friend request already processed").WithRequest(result.ID)
		}

		if next == models.FriendRequestAccepted {
			edge := models.NewFriendship(result.FromUserID, result.ToUserID)
			if err := tx.Omit(clause.Associations).Create(edge).Error; err != nil {
				if stderrors.Is(err, gorm.ErrDuplicatedKey) {
					return errors.New(errors.ErrCodeAlreadyFriends, "already friends")
				}
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create friendship")
			}
		}

		result.Status = next
		result.PendingPair = nil
		result.RespondedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetRequest retrieves a friend request with both parties loaded
func (r *FriendRepository) GetRequest(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		First(&req, requestID).Error

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "friend request not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get friend request")
	}

	return &req, nil
}

// FindPendingBetween returns the PENDING request for the pair in either
// direction, or nil.
func (r *FriendRepository) FindPendingBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	return findPending(r.db.WithContext(ctx), a, b)
}

// AreFriends checks if two users are friends
func (r *FriendRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	return areFriends(r.db.WithContext(ctx), a, b)
}

// RemoveFriendship deletes the edge between a and b. Request history is
// left untouched.
func (r *FriendRepository) RemoveFriendship(ctx context.Context, a, b uint) error {
	edge := models.NewFriendship(a, b)
	result := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", edge.UserLowID, edge.UserHighID).
		Delete(&models.Friendship{})

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to remove friend")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "friendship not found")
	}

	return nil
}

// GetPendingRequests returns PENDING requests addressed to and sent by
// userID, newest first.
func (r *FriendRepository) GetPendingRequests(ctx context.Context, userID uint) (incoming, outgoing []models.FriendRequest, err error) {
	db := r.db.WithContext(ctx)

	err = db.Preload("FromUser").Preload("ToUser").
		Where("to_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").Order("id DESC").
		Find(&incoming).Error
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get incoming requests")
	}

	err = db.Preload("FromUser").Preload("ToUser").
		Where("from_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").Order("id DESC").
		Find(&outgoing).Error
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get outgoing requests")
	}

	return incoming, outgoing, nil
}

// GetFriends retrieves list of user's friends ordered by username
func (r *FriendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	db := r.db.WithContext(ctx)
	low, high := friendIDQueries(db, userID)

	var friends []models.User
	err := db.Where("id IN (?) OR id IN (?)", low, high).
		Order("username ASC").
		Find(&friends).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get friends")
	}

	return friends, nil
}

func findPending(db *gorm.DB, a, b uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := db.Where("pending_pair = ? AND status = ?", models.PairKey(a, b), models.FriendRequestPending).
		Take(&req).Error

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to check pending requests")
	}
	return &req, nil
}

func areFriends(db *gorm.DB, a, b uint) (bool, error) {
	edge := models.NewFriendship(a, b)

	var count int64
	err := db.Model(&models.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", edge.UserLowID, edge.UserHighID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to check friendship")
	}

	return count > 0, nil
}

// friendIDQueries returns subqueries selecting userID's friends from both
// sides of the canonical edge.
func friendIDQueries(db *gorm.DB, userID uint) (low, high *gorm.DB) {
	low = db.Model(&models.Friendship{}).Select("user_low_id").Where("user_high_id = ?", userID)
	high = db.Model(&models.Friendship{}).Select("user_high_id").Where("user_low_id = ?", userID)
	return low, high
}
