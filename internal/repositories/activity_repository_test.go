package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_SourceKeyRecordedOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	game := testutil.CreateGame(t, db, "Celeste")

	key := "mutation-1"
	first := &models.ActivityEvent{
		ActorID:   alice.ID,
		GameID:    game.ID,
		Verb:      models.VerbStatusChange,
		Status:    models.EntryStatusPlaying,
		SourceKey: &key,
	}
	created, err := repo.Append(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	replay := &models.ActivityEvent{
		ActorID:   alice.ID,
		GameID:    game.ID,
		Verb:      models.VerbStatusChange,
		Status:    models.EntryStatusPlaying,
		SourceKey: &key,
	}
	created, err = repo.Append(ctx, replay)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, replay.ID)

	var count int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAppend_StoresOptionalFields(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	game := testutil.CreateGame(t, db, "Hades")

	minutes := 90
	event := &models.ActivityEvent{
		ActorID:     alice.ID,
		GameID:      game.ID,
		Verb:        models.VerbSessionLogged,
		DurationMin: &minutes,
		Note:        "escaped once",
	}
	_, err := repo.Append(ctx, event)
	require.NoError(t, err)

	var stored models.ActivityEvent
	require.NoError(t, db.First(&stored, event.ID).Error)
	assert.Equal(t, models.VerbSessionLogged, stored.Verb)
	assert.False(t, stored.Status.IsSet())
	assert.Nil(t, stored.Score)
	require.NotNil(t, stored.DurationMin)
	assert.Equal(t, 90, *stored.DurationMin)
	assert.Equal(t, "escaped once", stored.Note)
}

func TestFeed_SelfAndFriendsOnly(t *testing.T) {
	db := testutil.NewDB(t)
	friends := NewFriendRepository(db)
	repo := NewActivityRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	game := testutil.CreateGame(t, db, "Outer Wilds")

	req, err := friends.CreateRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = friends.Transition(ctx, req.ID, models.FriendRequestAccepted, nil)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	own := testutil.CreateActivity(t, db, alice.ID, game.ID, 7, base)
	friend := testutil.CreateActivity(t, db, bob.ID, game.ID, 8, base.Add(time.Minute))
	testutil.CreateActivity(t, db, carol.ID, game.ID, 9, base.Add(2*time.Minute))

	events, err := repo.Feed(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, friend.ID, events[0].ID)
	assert.Equal(t, own.ID, events[1].ID)
	assert.Equal(t, "bob", events[0].Actor.Username)
	assert.Equal(t, "Outer Wilds", events[0].Game.Title)
}

func TestFeed_TieBreakByID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	game := testutil.CreateGame(t, db, "Tetris")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, testutil.CreateActivity(t, db, alice.ID, game.ID, i, at).ID)
	}

	var got []uint
	for offset := 0; offset < 6; offset += 2 {
		page, err := repo.Feed(ctx, alice.ID, 2, offset)
		require.NoError(t, err)
		for _, e := range page {
			got = append(got, e.ID)
		}
	}

	want := []uint{ids[4], ids[3], ids[2], ids[1], ids[0]}
	assert.Equal(t, want, got)
}
