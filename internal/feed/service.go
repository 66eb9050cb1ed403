// Package feed assembles an account's activity feed: their own items
// plus those of every account they follow, newest first.
package feed

import (
	"context"

	"gorm.io/gorm"

	"pulse/backend/internal/models"
	"pulse/backend/internal/social"
)

const defaultLimit = 100

type Service struct {
	db    *gorm.DB
	graph *social.Graph
}

func NewService(db *gorm.DB, graph *social.Graph) *Service {
	return &Service{db: db, graph: graph}
}

// ForAccount returns feed items whose sender is the account itself or
// an account it follows.
func (s *Service) ForAccount(ctx context.Context, accountID uint, limit int) ([]models.FeedItem, error) {
	if limit <= 0 || limit > defaultLimit {
		limit = defaultLimit
	}

	following, err := s.graph.FollowingOf(ctx, accountID)
	if err != nil {
		return nil, err
	}
	senderIDs := make([]uint, 0, len(following.Accounts)+1)
	senderIDs = append(senderIDs, accountID)
	for _, p := range following.Accounts {
		senderIDs = append(senderIDs, p.ID)
	}

	items := []models.FeedItem{}
	err = s.db.WithContext(ctx).
		Where("sender_kind = ? AND sender_id IN ?", models.EntityAccount, senderIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
