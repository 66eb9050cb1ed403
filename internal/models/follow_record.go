package models

import "gorm.io/gorm"

// FollowRecord is the per-account node in the follow graph. There is at
// most one per account, created lazily on the first social interaction.
// An edge in follow_edges means "follower follows record". The inverse
// set (who a record follows) is derived by querying the join table the
// other way around.
type FollowRecord struct {
	gorm.Model
	AccountID uint    `gorm:"uniqueIndex;not null"`
	Account   Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE;"`

	Followers []*FollowRecord `gorm:"many2many:follow_edges;joinForeignKey:RecordID;joinReferences:FollowerID"`
}
