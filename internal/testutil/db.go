package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mroshb/game_journal/internal/config"
	"github.com/mroshb/game_journal/internal/database"
	"github.com/mroshb/game_journal/internal/models"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a per-test directory.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "journal.db"),
		AppEnv:   "test",
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate() failed: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return user
}

// CreateGame inserts a catalog game.
func CreateGame(t *testing.T, db *gorm.DB, title string) *models.Game {
	t.Helper()

	game := &models.Game{Title: title}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("create game %q: %v", title, err)
	}
	return game
}

// CreateActivity inserts a rating event by actor at the given time.
func CreateActivity(t *testing.T, db *gorm.DB, actorID, gameID uint, score int, at time.Time) *models.ActivityEvent {
	t.Helper()

	event := &models.ActivityEvent{
		ActorID:   actorID,
		GameID:    gameID,
		Verb:      models.VerbRated,
		Score:     &score,
		CreatedAt: at,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create activity: %v", err)
	}
	return event
}
