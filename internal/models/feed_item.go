package models

import "gorm.io/gorm"

// FeedItem is an append-only activity record with no recipient: it is
// visible to anyone whose feed query includes its sender.
type FeedItem struct {
	gorm.Model
	Sender EntityRef `gorm:"embedded;embeddedPrefix:sender_"`
	Verb   string    `gorm:"size:255;not null"`
	Action EntityRef `gorm:"embedded;embeddedPrefix:action_"`
	Target EntityRef `gorm:"embedded;embeddedPrefix:target_"`
}
