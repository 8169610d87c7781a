package repositories

import (
	"context"
	"testing"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/testutil"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequest_Basic(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	req, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.NotZero(t, req.ID)
	assert.Equal(t, models.FriendRequestPending, req.Status)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Nil(t, req.RespondedAt)

	stored, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.FromUser.Username)
	assert.Equal(t, "bob", stored.ToUser.Username)
	require.NotNil(t, stored.PendingPair)
	assert.Equal(t, models.PairKey(alice.ID, bob.ID), *stored.PendingPair)
}

func TestCreateRequest_Rejections(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	_, err := repo.CreateRequest(ctx, alice.ID, alice.ID)
	assert.Equal(t, errors.ErrCodeInvalidOperation, errors.CodeOf(err))

	_, err = repo.CreateRequest(ctx, alice.ID, 9999)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	first, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		_, err = repo.CreateRequest(ctx, pair[0], pair[1])
		appErr, ok := errors.As(err)
		require.True(t, ok, "expected AppError, got %v", err)
		assert.Equal(t, errors.ErrCodeDuplicateRequest, appErr.Code)
		assert.Equal(t, first.ID, appErr.RequestID)
	}

	_, err = repo.Transition(ctx, first.ID, models.FriendRequestAccepted, nil)
	require.NoError(t, err)

	_, err = repo.CreateRequest(ctx, bob.ID, alice.ID)
	assert.Equal(t, errors.ErrCodeAlreadyFriends, errors.CodeOf(err))
}

func TestTransition_AcceptCreatesEdge(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	req, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	accepted, err := repo.Transition(ctx, req.ID, models.FriendRequestAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	assert.Nil(t, accepted.PendingPair)

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		friends, err := repo.AreFriends(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, friends)
	}

	var edges int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	pending, err := repo.FindPendingBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestTransition_TerminalIsFinal(t *testing.T) {
	tests := []struct {
		name  string
		first models.FriendRequestStatus
	}{
		{name: "Declined", first: models.FriendRequestDeclined},
		{name: "Canceled", first: models.FriendRequestCanceled},
		{name: "Accepted", first: models.FriendRequestAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			repo := NewFriendRepository(db)
			ctx := context.Background()
			alice := testutil.CreateUser(t, db, "alice")
			bob := testutil.CreateUser(t, db, "bob")

			req, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			_, err = repo.Transition(ctx, req.ID, tt.first, nil)
			require.NoError(t, err)

			for _, next := range []models.FriendRequestStatus{models.FriendRequestAccepted, models.FriendRequestDeclined, models.FriendRequestCanceled} {
				_, err := repo.Transition(ctx, req.ID, next, nil)
				appErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeNotPending, appErr.Code)
				assert.Equal(t, req.ID, appErr.RequestID)
			}

			stored, err := repo.GetRequest(ctx, req.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.first, stored.Status)
		})
	}
}

func TestTransition_GuardAbortsWithoutWrite(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	req, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	deny := func(*models.FriendRequest) error {
		return errors.New(errors.ErrCodeForbidden, "nope")
	}
	_, err = repo.Transition(ctx, req.ID, models.FriendRequestAccepted, deny)
	assert.Equal(t, errors.ErrCodeForbidden, errors.CodeOf(err))

	stored, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestPending, stored.Status)

	friends, err := repo.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)
}

func TestTransition_Unknown(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)

	_, err := repo.Transition(context.Background(), 404, models.FriendRequestDeclined, nil)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	_, err = repo.Transition(context.Background(), 404, models.FriendRequestPending, nil)
	assert.Equal(t, errors.ErrCodeInvalidOperation, errors.CodeOf(err))
}

func TestNewRequestAfterTerminal(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	first, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = repo.Transition(ctx, first.ID, models.FriendRequestDeclined, nil)
	require.NoError(t, err)

	second, err := repo.CreateRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	pending, err := repo.FindPendingBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, second.ID, pending.ID)
}

func TestRemoveFriendship(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	req, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = repo.Transition(ctx, req.ID, models.FriendRequestAccepted, nil)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveFriendship(ctx, bob.ID, alice.ID))

	friends, err := repo.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	err = repo.RemoveFriendship(ctx, alice.ID, bob.ID)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	// History stays as it was.
	stored, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, stored.Status)
}

func TestGetFriendsAndPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	dave := testutil.CreateUser(t, db, "dave")

	// alice <-> carol, bob <-> alice (alice on both sides of the edge)
	r1, err := repo.CreateRequest(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = repo.Transition(ctx, r1.ID, models.FriendRequestAccepted, nil)
	require.NoError(t, err)
	r2, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = repo.Transition(ctx, r2.ID, models.FriendRequestAccepted, nil)
	require.NoError(t, err)

	_, err = repo.CreateRequest(ctx, dave.ID, alice.ID)
	require.NoError(t, err)

	friends, err := repo.GetFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "bob", friends[0].Username)
	assert.Equal(t, "carol", friends[1].Username)

	incoming, outgoing, err := repo.GetPendingRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Empty(t, outgoing)
	assert.Equal(t, "dave", incoming[0].FromUser.Username)

	incoming, outgoing, err = repo.GetPendingRequests(ctx, dave.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "alice", outgoing[0].ToUser.Username)
}
