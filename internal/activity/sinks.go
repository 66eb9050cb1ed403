package activity

import (
	"context"

	"gorm.io/gorm"

	"pulse/backend/internal/models"
)

// NotificationSink persists notification events.
type NotificationSink interface {
	Emit(ctx context.Context, e Event) error
}

// FeedSink persists feed events.
type FeedSink interface {
	Emit(ctx context.Context, e Event) error
}

type gormNotificationSink struct {
	db *gorm.DB
}

// NewNotificationSink returns a sink writing notification rows.
func NewNotificationSink(db *gorm.DB) NotificationSink {
	return &gormNotificationSink{db: db}
}

func (s *gormNotificationSink) Emit(ctx context.Context, e Event) error {
	n := models.Notification{
		RecipientID: e.RecipientID,
		Sender:      e.Sender,
		Verb:        e.Verb,
		Action:      e.Action,
		Target:      e.Target,
	}
	return s.db.WithContext(ctx).Create(&n).Error
}

type gormFeedSink struct {
	db *gorm.DB
}

// NewFeedSink returns a sink writing feed rows.
func NewFeedSink(db *gorm.DB) FeedSink {
	return &gormFeedSink{db: db}
}

func (s *gormFeedSink) Emit(ctx context.Context, e Event) error {
	item := models.FeedItem{
		Sender: e.Sender,
		Verb:   e.Verb,
		Action: e.Action,
		Target: e.Target,
	}
	return s.db.WithContext(ctx).Create(&item).Error
}
