package social

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pulse/backend/internal/activity"
	"pulse/backend/internal/core"
	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
)

func setupGraph(t *testing.T) (*Graph, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	dispatcher := activity.NewDispatcher(
		activity.NewNotificationSink(db),
		activity.NewFeedSink(db),
		zap.NewNop(),
	)
	return NewGraph(db, dispatcher, zap.NewNop()), db
}

func seedAccount(t *testing.T, db *gorm.DB, name string) *models.Account {
	t.Helper()
	acct := &models.Account{
		FullName:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(acct).Error)
	return acct
}

func TestFollowToggle(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	res, err := graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.NowFollowing)
	assert.Equal(t, int64(1), res.FollowersCount)

	following, err := graph.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// The target gets exactly one notification.
	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, bob.ID, notes[0].RecipientID)
	assert.Equal(t, "alice is following you", notes[0].Verb)
	assert.Equal(t, models.AccountRef(alice.ID), notes[0].Sender)

	// Second toggle unfollows without notifying anyone.
	res, err = graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.NowFollowing)
	assert.Equal(t, int64(0), res.FollowersCount)

	following, err = graph.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFollowIsDirected(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	_, err := graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	reverse, err := graph.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollowSelf(t *testing.T) {
	graph, db := setupGraph(t)
	alice := seedAccount(t, db, "alice")

	_, err := graph.Follow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, core.ErrSelfFollow)
}

func TestFollowUnknownTarget(t *testing.T) {
	graph, db := setupGraph(t)
	alice := seedAccount(t, db, "alice")

	_, err := graph.Follow(context.Background(), alice.ID, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFollowClearsBlock(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	require.NoError(t, graph.Block(ctx, alice.ID, bob.ID))
	blocked, err := graph.IsBlocked(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, blocked)

	// Following lifts the viewer's own block on the target.
	_, err = graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	blocked, err = graph.IsBlocked(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestFollowLeavesReverseBlock(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	require.NoError(t, graph.Block(ctx, bob.ID, alice.ID))

	_, err := graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Bob's block on Alice is not Alice's to lift.
	blocked, err := graph.IsBlocked(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestBlockSeversFollowsBothWays(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	_, err := graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = graph.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, graph.Block(ctx, alice.ID, bob.ID))

	ab, err := graph.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := graph.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ab)
	assert.False(t, ba)
}

func TestBlockIdempotent(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	require.NoError(t, graph.Block(ctx, alice.ID, bob.ID))
	require.NoError(t, graph.Block(ctx, alice.ID, bob.ID))

	var n int64
	require.NoError(t, db.Table("account_blocks").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestBlockSelf(t *testing.T) {
	graph, db := setupGraph(t)
	alice := seedAccount(t, db, "alice")

	err := graph.Block(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, core.ErrSelfBlock)
}

func TestCanViewProfile(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	ok, err := graph.CanViewProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, graph.Block(ctx, alice.ID, bob.ID))

	ok, err = graph.CanViewProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// The blocker can still see the blocked account's profile.
	ok, err = graph.CanViewProfile(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Owners always see themselves.
	ok, err = graph.CanViewProfile(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFollowListings(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")
	carol := seedAccount(t, db, "carol")

	_, err := graph.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = graph.Follow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = graph.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	followers, err := graph.FollowersOf(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), followers.Count)
	assert.Equal(t, bob.ID, followers.Accounts[0].ID)
	assert.Equal(t, carol.ID, followers.Accounts[1].ID)

	following, err := graph.FollowingOf(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), following.Count)
	assert.Equal(t, carol.ID, following.Accounts[0].ID)
}

func TestFollowListingsWithoutRecord(t *testing.T) {
	graph, db := setupGraph(t)
	alice := seedAccount(t, db, "alice")

	followers, err := graph.FollowersOf(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), followers.Count)
	assert.NotNil(t, followers.Accounts)
	assert.Empty(t, followers.Accounts)
}

func TestTogglePrivacy(t *testing.T) {
	graph, db := setupGraph(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")

	private, err := graph.TogglePrivacy(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, private)

	private, err = graph.TogglePrivacy(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, private)
}
