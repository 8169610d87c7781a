package repositories

import (
	"context"
	stderrors "errors"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository is the append-only activity log.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts event. An event whose SourceKey was already recorded is
// not inserted again; the stored copy is loaded into event and created is
// false.
func (r *ActivityRepository) Append(ctx context.Context, event *models.ActivityEvent) (created bool, err error) {
	db := r.db.WithContext(ctx)

	err = db.Omit(clause.Associations).Create(event).Error
	if err == nil {
		return true, nil
	}
	if !stderrors.Is(err, gorm.ErrDuplicatedKey) || event.SourceKey == nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to append activity")
	}

	var stored models.ActivityEvent
	if err := db.Where("source_key = ?", *event.SourceKey).Take(&stored).Error; err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load recorded activity")
	}
	*event = stored
	return false, nil
}

// Feed returns one page of activity by viewerID and the viewer's current
// friends, newest first. The friend set is resolved by the same statement
// that reads the events.
func (r *ActivityRepository) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.ActivityEvent, error) {
	db := r.db.WithContext(ctx)
	low, high := friendIDQueries(db, viewerID)

	var events []models.ActivityEvent
	err := db.Preload("Actor").Preload("Game").
		Where("actor_id = ? OR actor_id IN (?) OR actor_id IN (?)", viewerID, low, high).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load feed")
	}

	return events, nil
}
