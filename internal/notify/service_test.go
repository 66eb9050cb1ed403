package notify

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

	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db, nil, zap.NewNop()), db
}

func seedRecipient(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	acct := &models.Account{FullName: "bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(acct).Error)
	return acct
}

func seedNotifications(t *testing.T, db *gorm.DB, recipientID uint, n int) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		note := models.Notification{
			RecipientID: recipientID,
			Sender:      models.AccountRef(99),
			Verb:        fmt.Sprintf("event %d", i),
		}
		note.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&note).Error)
	}
}

func TestListMarksEverythingRead(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	bob := seedRecipient(t, db)
	seedNotifications(t, db, bob.ID, 5)

	notes, err := svc.ListAndMarkRead(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notes, 5)

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", bob.ID, false).
		Count(&unread).Error)
	assert.Equal(t, int64(0), unread)
}

func TestListReturnsNewestFirst(t *testing.T) {
	svc, db := setupService(t)
	bob := seedRecipient(t, db)
	seedNotifications(t, db, bob.ID, 3)

	notes, err := svc.ListAndMarkRead(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "event 2", notes[0].Verb)
	assert.Equal(t, "event 0", notes[2].Verb)
}

func TestListTrimsOldNotifications(t *testing.T) {
	svc, db := setupService(t)
	bob := seedRecipient(t, db)
	seedNotifications(t, db, bob.ID, keepRecent+10)

	notes, err := svc.ListAndMarkRead(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Len(t, notes, keepRecent)

	var remaining int64
	require.NoError(t, db.Unscoped().Model(&models.Notification{}).
		Where("recipient_id = ?", bob.ID).
		Count(&remaining).Error)
	assert.Equal(t, int64(keepRecent), remaining)
}

func TestListDoesNotTouchOtherRecipients(t *testing.T) {
	svc, db := setupService(t)
	bob := seedRecipient(t, db)
	carol := &models.Account{FullName: "carol", Email: "carol@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(carol).Error)

	seedNotifications(t, db, bob.ID, keepRecent+10)
	seedNotifications(t, db, carol.ID, 2)

	_, err := svc.ListAndMarkRead(context.Background(), bob.ID)
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), carol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUnreadCountFallsBackToDatabase(t *testing.T) {
	svc, db := setupService(t)
	bob := seedRecipient(t, db)
	seedNotifications(t, db, bob.ID, 4)

	count, err := svc.UnreadCount(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
