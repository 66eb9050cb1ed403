// Package notify is the notification read model: fetching a recipient's
// recent notifications marks them read and trims everything older, so
// the table never grows past a screenful per account.
package notify

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulse/backend/internal/cache"
	"pulse/backend/internal/models"
)

// keepRecent is how many notifications a recipient retains.
const keepRecent = 50

type Service struct {
	db     *gorm.DB
	unread *cache.UnreadCounter
	log    *zap.Logger
}

// NewService builds the read model. unread may be nil when Redis is not
// configured.
func NewService(db *gorm.DB, unread *cache.UnreadCounter, log *zap.Logger) *Service {
	return &Service{db: db, unread: unread, log: log}
}

// ListAndMarkRead returns the recipient's most recent notifications,
// newest first. Everything is flagged read, and rows older than the
// oldest returned one are deleted.
func (s *Service) ListAndMarkRead(ctx context.Context, accountID uint) ([]models.Notification, error) {
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", accountID, false).
		Update("read", true).Error
	if err != nil {
		return nil, err
	}

	notes := []models.Notification{}
	err = s.db.WithContext(ctx).
		Where("recipient_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(keepRecent).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	if len(notes) > 0 {
		cutoff := notes[len(notes)-1].CreatedAt
		err = s.db.WithContext(ctx).Unscoped().
			Where("recipient_id = ? AND created_at < ?", accountID, cutoff).
			Delete(&models.Notification{}).Error
		if err != nil {
			return nil, err
		}
	}

	if s.unread != nil {
		if err := s.unread.Reset(ctx, accountID); err != nil {
			s.log.Warn("unread counter reset failed",
				zap.Uint("account", accountID), zap.Error(err))
		}
	}
	return notes, nil
}

// UnreadCount returns the number of unread notifications, served from
// the counter cache when it is warm.
func (s *Service) UnreadCount(ctx context.Context, accountID uint) (int64, error) {
	if s.unread != nil {
		n, ok, err := s.unread.Get(ctx, accountID)
		if err != nil {
			s.log.Warn("unread counter read failed",
				zap.Uint("account", accountID), zap.Error(err))
		} else if ok {
			return n, nil
		}
	}

	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", accountID, false).
		Count(&n).Error
	if err != nil {
		return 0, err
	}

	if s.unread != nil {
		if err := s.unread.Set(ctx, accountID, n); err != nil {
			s.log.Warn("unread counter store failed",
				zap.Uint("account", accountID), zap.Error(err))
		}
	}
	return n, nil
}
