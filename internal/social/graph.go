// Package social maintains the follow and block relationships between
// accounts and answers the visibility questions that hang off them.
package social

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulse/backend/internal/activity"
	"pulse/backend/internal/core"
	"pulse/backend/internal/models"
)

// FollowResult reports the outcome of a follow toggle.
type FollowResult struct {
	NowFollowing   bool
	FollowersCount int64
}

// Profile is the lightweight projection used in follower listings.
type Profile struct {
	ID            uint   `json:"id"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
}

// FollowList is a count plus projection of the related accounts.
type FollowList struct {
	Count    int64     `json:"count"`
	Accounts []Profile `json:"accounts"`
}

// Graph is the social graph store.
type Graph struct {
	db         *gorm.DB
	dispatcher *activity.Dispatcher
	log        *zap.Logger
}

func NewGraph(db *gorm.DB, dispatcher *activity.Dispatcher, log *zap.Logger) *Graph {
	return &Graph{db: db, dispatcher: dispatcher, log: log}
}

func (g *Graph) account(ctx context.Context, id uint) (*models.Account, error) {
	var acct models.Account
	if err := g.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// record fetches the account's follow record, creating it lazily.
func record(tx *gorm.DB, accountID uint) (*models.FollowRecord, error) {
	var rec models.FollowRecord
	err := tx.Where(models.FollowRecord{AccountID: accountID}).FirstOrCreate(&rec).Error
	return &rec, err
}

func edgeExists(tx *gorm.DB, recordID, followerID uint) (bool, error) {
	var n int64
	err := tx.Table("follow_edges").
		Where("record_id = ? AND follower_id = ?", recordID, followerID).
		Count(&n).Error
	return n > 0, err
}

// Follow toggles the viewer→target follow edge. Adding the edge also
// lifts any block the viewer holds on the target; the reverse block is
// untouched. Removing the edge (unfollow) has no side effects.
func (g *Graph) Follow(ctx context.Context, viewerID, targetID uint) (FollowResult, error) {
	if viewerID == targetID {
		return FollowResult{}, core.ErrSelfFollow
	}
	viewer, err := g.account(ctx, viewerID)
	if err != nil {
		return FollowResult{}, err
	}
	target, err := g.account(ctx, targetID)
	if err != nil {
		return FollowResult{}, err
	}

	var nowFollowing bool
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		viewerRec, err := record(tx, viewerID)
		if err != nil {
			return err
		}
		targetRec, err := record(tx, targetID)
		if err != nil {
			return err
		}

		following, err := edgeExists(tx, targetRec.ID, viewerRec.ID)
		if err != nil {
			return err
		}
		if following {
			return tx.Model(targetRec).Association("Followers").Delete(viewerRec)
		}
		if err := tx.Model(targetRec).Association("Followers").Append(viewerRec); err != nil {
			return err
		}
		nowFollowing = true
		return tx.Model(viewer).Association("Blocking").Delete(target)
	})
	if err != nil {
		return FollowResult{}, err
	}

	if nowFollowing {
		g.dispatcher.Dispatch(ctx, activity.Expand(activity.Transition{
			Kind:   activity.TransitionFollowed,
			Actor:  viewer,
			Target: target,
		}))
	}

	count, err := g.followersCount(ctx, targetID)
	if err != nil {
		return FollowResult{}, err
	}
	return FollowResult{NowFollowing: nowFollowing, FollowersCount: count}, nil
}

// Block creates the directed viewer→target block and severs the follow
// edges in both directions. Blocking twice is a no-op.
func (g *Graph) Block(ctx context.Context, viewerID, targetID uint) error {
	if viewerID == targetID {
		return core.ErrSelfBlock
	}
	viewer, err := g.account(ctx, viewerID)
	if err != nil {
		return err
	}
	target, err := g.account(ctx, targetID)
	if err != nil {
		return err
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(viewer).Association("Blocking").Append(target); err != nil {
			return err
		}
		viewerRec, err := record(tx, viewerID)
		if err != nil {
			return err
		}
		targetRec, err := record(tx, targetID)
		if err != nil {
			return err
		}
		if err := tx.Model(targetRec).Association("Followers").Delete(viewerRec); err != nil {
			return err
		}
		return tx.Model(viewerRec).Association("Followers").Delete(targetRec)
	})
}

// TogglePrivacy flips the account's private flag and returns the new
// state.
func (g *Graph) TogglePrivacy(ctx context.Context, accountID uint) (bool, error) {
	acct, err := g.account(ctx, accountID)
	if err != nil {
		return false, err
	}
	newState := !acct.IsPrivate
	if err := g.db.WithContext(ctx).Model(acct).Update("is_private", newState).Error; err != nil {
		return false, err
	}
	return newState, nil
}

// IsBlocked reports whether viewer appears in target's blocking set.
func (g *Graph) IsBlocked(ctx context.Context, viewerID, targetID uint) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Table("account_blocks").
		Where("account_id = ? AND blocked_id = ?", targetID, viewerID).
		Count(&n).Error
	return n > 0, err
}

// CanViewProfile is false only when the owner has blocked the viewer.
// The private-account flag gates content at the caller layer, not raw
// profile visibility.
func (g *Graph) CanViewProfile(ctx context.Context, ownerID, viewerID uint) (bool, error) {
	if ownerID == viewerID {
		return true, nil
	}
	blocked, err := g.IsBlocked(ctx, viewerID, ownerID)
	if err != nil {
		return false, err
	}
	return !blocked, nil
}

// IsFollowing reports whether the viewer→target follow edge exists.
func (g *Graph) IsFollowing(ctx context.Context, viewerID, targetID uint) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Table("follow_edges").
		Joins("JOIN follow_records tr ON tr.id = follow_edges.record_id").
		Joins("JOIN follow_records vr ON vr.id = follow_edges.follower_id").
		Where("tr.account_id = ? AND vr.account_id = ?", targetID, viewerID).
		Count(&n).Error
	return n > 0, err
}

// FollowersOf returns the accounts following the given account, in
// stable id order.
func (g *Graph) FollowersOf(ctx context.Context, accountID uint) (FollowList, error) {
	return g.related(ctx, accountID, true)
}

// FollowingOf returns the accounts the given account follows, in
// stable id order.
func (g *Graph) FollowingOf(ctx context.Context, accountID uint) (FollowList, error) {
	return g.related(ctx, accountID, false)
}

func (g *Graph) related(ctx context.Context, accountID uint, followers bool) (FollowList, error) {
	if _, err := g.account(ctx, accountID); err != nil {
		return FollowList{}, err
	}

	var rec models.FollowRecord
	err := g.db.WithContext(ctx).Where("account_id = ?", accountID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No record yet means no social interaction yet.
		return FollowList{Accounts: []Profile{}}, nil
	}
	if err != nil {
		return FollowList{}, err
	}

	q := g.db.WithContext(ctx).Table("accounts").
		Select("accounts.id, accounts.full_name, accounts.profile_pic_url").
		Joins("JOIN follow_records ON follow_records.account_id = accounts.id")
	if followers {
		q = q.Joins("JOIN follow_edges ON follow_edges.follower_id = follow_records.id").
			Where("follow_edges.record_id = ?", rec.ID)
	} else {
		q = q.Joins("JOIN follow_edges ON follow_edges.record_id = follow_records.id").
			Where("follow_edges.follower_id = ?", rec.ID)
	}

	profiles := []Profile{}
	if err := q.Order("accounts.id").Scan(&profiles).Error; err != nil {
		return FollowList{}, err
	}
	return FollowList{Count: int64(len(profiles)), Accounts: profiles}, nil
}

func (g *Graph) followersCount(ctx context.Context, accountID uint) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Table("follow_edges").
		Joins("JOIN follow_records ON follow_records.id = follow_edges.record_id").
		Where("follow_records.account_id = ?", accountID).
		Count(&n).Error
	return n, err
}
