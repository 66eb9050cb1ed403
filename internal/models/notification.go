package models

import "gorm.io/gorm"

// Notification is an append-only record addressed to exactly one
// recipient. Only the Read flag mutates after creation.
type Notification struct {
	gorm.Model
	RecipientID uint    `gorm:"not null;index"`
	Recipient   Account `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE;"`

	Sender EntityRef `gorm:"embedded;embeddedPrefix:sender_"`
	Verb   string    `gorm:"size:255;not null"`
	Action EntityRef `gorm:"embedded;embeddedPrefix:action_"`
	Target EntityRef `gorm:"embedded;embeddedPrefix:target_"`

	Read bool `gorm:"not null;default:false;index"`
}
