package repositories

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/pkg/errors"
	"gorm.io/gorm"
)

type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// GetGameByID retrieves a catalog game by ID
func (r *GameRepository) GetGameByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	result := r.db.WithContext(ctx).First(&game, id)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "game not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get game")
	}

	return &game, nil
}

// FindOrCreateByTitle returns the game with a case-insensitively equal
// title, creating a bare catalog row when none exists.
func (r *GameRepository) FindOrCreateByTitle(ctx context.Context, title string) (*models.Game, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New(errors.ErrCodeValidation, "game title is required")
	}

	var game models.Game
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(title) = LOWER(?)", title).Order("id ASC").First(&game).Error
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		game = models.Game{Title: title}
		return tx.Create(&game).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to resolve game")
	}

	return &game, nil
}
