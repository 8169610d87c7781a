package services

import (
	"context"
	"time"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/mroshb/game_journal/internal/security"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/mroshb/game_journal/pkg/logger"
)

const maxMutationIDLength = 64

// EntryMutation is a fact emitted by the journal when an entry changes.
type EntryMutation struct {
	MutationID  string              `json:"mutation_id"`
	UserID      uint                `json:"user_id"`
	GameID      uint                `json:"game_id"`
	Kind        models.ActivityVerb `json:"kind"`
	Status      models.EntryStatus  `json:"status,omitempty"`
	Score       *int                `json:"score,omitempty"`
	DurationMin *int                `json:"duration_min,omitempty"`
	Note        string              `json:"note,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// ActivityService turns entry mutations into activity events.
type ActivityService struct {
	activityRepo *repositories.ActivityRepository
	userRepo     *repositories.UserRepository
	gameRepo     *repositories.GameRepository
}

func NewActivityService(activityRepo *repositories.ActivityRepository, userRepo *repositories.UserRepository, gameRepo *repositories.GameRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		gameRepo:     gameRepo,
	}
}

// Record appends the event described by m. A mutation whose id was already
// recorded returns the stored event with created false.
func (s *ActivityService) Record(ctx context.Context, m EntryMutation) (event *models.ActivityEvent, created bool, err error) {
	if len(m.MutationID) > maxMutationIDLength {
		return nil, false, errors.New(errors.ErrCodeValidation, "mutation id is too long")
	}

	if _, err := s.userRepo.GetUserByID(ctx, m.UserID); err != nil {
		return nil, false, err
	}
	if _, err := s.gameRepo.GetGameByID(ctx, m.GameID); err != nil {
		return nil, false, err
	}

	event = &models.ActivityEvent{
		ActorID:     m.UserID,
		GameID:      m.GameID,
		Verb:        m.Kind,
		Status:      m.Status,
		Score:       m.Score,
		DurationMin: m.DurationMin,
		Note:        security.SanitizeNote(m.Note, models.MaxNoteLength),
	}
	if !m.OccurredAt.IsZero() {
		event.CreatedAt = m.OccurredAt.UTC()
	}
	if m.MutationID != "" {
		key := m.MutationID
		event.SourceKey = &key
	}

	if err := event.Validate(); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeValidation, err.Error())
	}

	created, err = s.activityRepo.Append(ctx, event)
	if err != nil {
		logger.Error("Failed to record activity", "user_id", m.UserID, "game_id", m.GameID, "error", err)
		return nil, false, err
	}

	if created {
		logger.Debug("Activity recorded", "event_id", event.ID, "user_id", m.UserID, "verb", m.Kind.String())
	} else {
		logger.Debug("Duplicate mutation ignored", "mutation_id", m.MutationID, "event_id", event.ID)
	}
	return event, created, nil
}
