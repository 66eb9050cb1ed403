package party

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
	"pulse/backend/internal/core"
	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
)

// testNow is the frozen clock every store test runs against.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	dispatcher := activity.NewDispatcher(
		activity.NewNotificationSink(db),
		activity.NewFeedSink(db),
		zap.NewNop(),
	)
	store := NewStore(db, dispatcher, zap.NewNop())
	store.now = func() time.Time { return testNow }
	return store, db
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

func baseInput() CreateInput {
	partyType := models.PartySocial
	partySize := models.SizeMedium
	return CreateInput{
		PartyType: &partyType,
		PartySize: &partySize,
		Name:      "Rooftop Social",
		Location:  "12 Main St",
		Month:     int(testNow.Month()),
		Day:       testNow.Day(),
		Year:      testNow.Year(),
		StartTime: "20:00",
		EndTime:   "23:00",
	}
}

func TestCreateValidation(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	host := seedAccount(t, db, "host")

	cases := []struct {
		field  string
		mutate func(*CreateInput)
	}{
		{"party_type", func(in *CreateInput) { in.PartyType = nil }},
		{"name", func(in *CreateInput) { in.Name = "" }},
		{"location", func(in *CreateInput) { in.Location = "" }},
		{"party_size", func(in *CreateInput) { in.PartySize = nil }},
		{"party_month", func(in *CreateInput) { in.Month = 13 }},
		{"party_day", func(in *CreateInput) { in.Day = 0 }},
		{"start_time", func(in *CreateInput) { in.StartTime = "" }},
		{"start_time", func(in *CreateInput) { in.StartTime = "25:99" }},
		{"end_time", func(in *CreateInput) { in.EndTime = "midnight" }},
	}
	for _, tc := range cases {
		in := baseInput()
		tc.mutate(&in)
		_, err := store.Create(ctx, host.ID, in)
		ve, ok := core.IsValidation(err)
		require.True(t, ok, "expected validation error for %s, got %v", tc.field, err)
		assert.Equal(t, tc.field, ve.Field)
	}
}

func TestCreateHostAttends(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	p, err := store.Create(context.Background(), host.ID, baseInput())
	require.NoError(t, err)

	require.Len(t, p.Attendees, 1)
	assert.Equal(t, host.ID, p.Attendees[0].ID)
	assert.True(t, p.IsActive)
}

func TestCreatePublishesFeedItem(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	p, err := store.Create(context.Background(), host.ID, baseInput())
	require.NoError(t, err)

	var items []models.FeedItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, models.AccountRef(host.ID), items[0].Sender)
	assert.Equal(t, "is hosting a party", items[0].Verb)
	assert.Equal(t, models.PartyRef(p.ID), items[0].Target)
}

func TestCreateWeeklyRecurrence(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")
	guest := seedAccount(t, db, "guest")

	in := baseInput()
	in.Recurrence = models.RecurrenceWeekly
	in.InvitePolicy = models.InviteOnly
	in.InvitedIDs = []uint{guest.ID}

	primary, err := store.Create(context.Background(), host.ID, in)
	require.NoError(t, err)

	var parties []models.Party
	require.NoError(t, db.Preload("Attendees").Preload("InvitedUsers").
		Order("id").Find(&parties).Error)
	require.Len(t, parties, 4)
	assert.Equal(t, primary.ID, parties[0].ID)

	base := time.Date(in.Year, time.Month(in.Month), in.Day, 0, 0, 0, 0, time.Local)
	for i, p := range parties {
		want := base.AddDate(0, 0, 7*i)
		assert.Equal(t, int(want.Month()), p.PartyMonth)
		assert.Equal(t, want.Day(), p.PartyDay)
		assert.Equal(t, want.Year(), p.PartyYear)

		// Every sibling carries the host and the allow-list.
		require.Len(t, p.Attendees, 1)
		assert.Equal(t, host.ID, p.Attendees[0].ID)
		require.Len(t, p.InvitedUsers, 1)
		assert.Equal(t, guest.ID, p.InvitedUsers[0].ID)
	}

	// The invite notification goes out once, not once per sibling.
	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, guest.ID, notes[0].RecipientID)
	assert.Equal(t, "host invited you to their party", notes[0].Verb)
	assert.Equal(t, models.PartyRef(primary.ID), notes[0].Target)

	// One feed item for the series, attributed to the primary.
	var feedCount int64
	require.NoError(t, db.Model(&models.FeedItem{}).Count(&feedCount).Error)
	assert.Equal(t, int64(1), feedCount)
}

func TestCreateDailyRecurrenceAdvancesDates(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	in := baseInput()
	in.Recurrence = models.RecurrenceDaily

	_, err := store.Create(context.Background(), host.ID, in)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Party{}).Count(&count).Error)
	assert.Equal(t, int64(7), count)
}

func TestCreateDefaultsYear(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	in := baseInput()
	in.Year = 0

	p, err := store.Create(context.Background(), host.ID, in)
	require.NoError(t, err)
	assert.Equal(t, testNow.Year(), p.PartyYear)
}

func TestGetActiveSuppressesFutureRecurring(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	in := baseInput()
	in.Recurrence = models.RecurrenceDaily
	_, err := store.Create(context.Background(), host.ID, in)
	require.NoError(t, err)

	active, err := store.GetActive(context.Background())
	require.NoError(t, err)

	// Only the next instance of the series is listed.
	require.Len(t, active, 1)
	assert.Equal(t, testNow.Day(), active[0].PartyDay)
}

func TestGetActiveKeepsFutureOneOff(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	in := baseInput()
	in.Day = testNow.Day() + 3

	_, err := store.Create(context.Background(), host.ID, in)
	require.NoError(t, err)

	active, err := store.GetActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestGetByIDReconcilesExpiry(t *testing.T) {
	store, db := setupStore(t)
	host := seedAccount(t, db, "host")

	in := baseInput()
	in.Day = testNow.Day() - 2

	p, err := store.Create(context.Background(), host.ID, in)
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	var row models.Party
	require.NoError(t, db.First(&row, p.ID).Error)
	assert.False(t, row.IsActive)

	// Reconciling again is stable.
	p, err = store.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}

func TestGetByIDNotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetHostedByAppliesVisibility(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	host := seedAccount(t, db, "host")
	guest := seedAccount(t, db, "guest")
	stranger := seedAccount(t, db, "stranger")

	open := baseInput()
	_, err := store.Create(ctx, host.ID, open)
	require.NoError(t, err)

	hidden := baseInput()
	hidden.Name = "Inner Circle"
	hidden.InvitePolicy = models.InviteOnly
	hidden.InvitedIDs = []uint{guest.ID}
	_, err = store.Create(ctx, host.ID, hidden)
	require.NoError(t, err)

	hosted, err := store.GetHostedBy(ctx, host.ID, stranger.ID)
	require.NoError(t, err)
	require.Len(t, hosted, 1)
	assert.Equal(t, "Rooftop Social", hosted[0].Name)

	hosted, err = store.GetHostedBy(ctx, host.ID, guest.ID)
	require.NoError(t, err)
	assert.Len(t, hosted, 2)

	hosted, err = store.GetHostedBy(ctx, host.ID, host.ID)
	require.NoError(t, err)
	assert.Len(t, hosted, 2)
}

func TestGetAttending(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	host := seedAccount(t, db, "host")
	guest := seedAccount(t, db, "guest")

	p, err := store.Create(ctx, host.ID, baseInput())
	require.NoError(t, err)

	_, err = store.Attend(ctx, p.ID, guest.ID)
	require.NoError(t, err)

	attending, err := store.GetAttending(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, attending, 1)
	assert.Equal(t, p.ID, attending[0].ID)
}

func TestUpdateHostOnly(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	host := seedAccount(t, db, "host")
	other := seedAccount(t, db, "other")

	p, err := store.Create(ctx, host.ID, baseInput())
	require.NoError(t, err)

	_, err = store.Update(ctx, p.ID, other.ID, UpdateInput{Name: "Hijacked"})
	assert.ErrorIs(t, err, core.ErrPermissionDenied)

	updated, err := store.Update(ctx, p.ID, host.ID, UpdateInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateRejectsBadClock(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	host := seedAccount(t, db, "host")

	p, err := store.Create(ctx, host.ID, baseInput())
	require.NoError(t, err)

	_, err = store.Update(ctx, p.ID, host.ID, UpdateInput{StartTime: "9pm"})
	ve, ok := core.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "start_time", ve.Field)
}

func TestDeleteHostOnly(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	host := seedAccount(t, db, "host")
	other := seedAccount(t, db, "other")

	p, err := store.Create(ctx, host.ID, baseInput())
	require.NoError(t, err)

	err = store.Delete(ctx, p.ID, other.ID)
	assert.ErrorIs(t, err, core.ErrPermissionDenied)

	require.NoError(t, store.Delete(ctx, p.ID, host.ID))
	_, err = store.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
