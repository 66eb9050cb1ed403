package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pulse/backend/internal/activity"
	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
	"pulse/backend/internal/social"
)

func setupFeed(t *testing.T) (*Service, *social.Graph, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	dispatcher := activity.NewDispatcher(
		activity.NewNotificationSink(db),
		activity.NewFeedSink(db),
		zap.NewNop(),
	)
	graph := social.NewGraph(db, dispatcher, zap.NewNop())
	return NewService(db, graph), graph, db
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

func seedItem(t *testing.T, db *gorm.DB, senderID uint, verb string, at time.Time) {
	t.Helper()
	item := models.FeedItem{
		Sender: models.AccountRef(senderID),
		Verb:   verb,
	}
	item.CreatedAt = at
	require.NoError(t, db.Create(&item).Error)
}

func TestForAccountIncludesSelfAndFollowed(t *testing.T) {
	svc, graph, db := setupFeed(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")
	carol := seedAccount(t, db, "carol")

	_, err := graph.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedItem(t, db, alice.ID, "is hosting a party", base)
	seedItem(t, db, bob.ID, "is attending a party", base.Add(time.Minute))
	seedItem(t, db, carol.ID, "is hosting a party", base.Add(2*time.Minute))

	items, err := svc.ForAccount(ctx, alice.ID, 0)
	require.NoError(t, err)

	// Carol is not followed, so her item never shows up. Newest first.
	require.Len(t, items, 2)
	assert.Equal(t, models.AccountRef(bob.ID), items[0].Sender)
	assert.Equal(t, models.AccountRef(alice.ID), items[1].Sender)
}

func TestForAccountHonorsLimit(t *testing.T) {
	svc, _, db := setupFeed(t)
	alice := seedAccount(t, db, "alice")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedItem(t, db, alice.ID, fmt.Sprintf("event %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	items, err := svc.ForAccount(context.Background(), alice.ID, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "event 4", items[0].Verb)
}

func TestForAccountEmptyFeed(t *testing.T) {
	svc, _, db := setupFeed(t)
	alice := seedAccount(t, db, "alice")

	items, err := svc.ForAccount(context.Background(), alice.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}
