package models

import "gorm.io/gorm"

type DevicePlatform string

const (
	PlatformFCM  DevicePlatform = "fcm"
	PlatformAPNS DevicePlatform = "apns"
)

// Device is a registered push target for an account. An account may
// have several devices or none at all.
type Device struct {
	gorm.Model
	AccountID uint           `gorm:"not null;index"`
	Account   Account        `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE;"`
	Token     string         `gorm:"size:255;unique;not null"`
	Platform  DevicePlatform `gorm:"size:10;not null"`
}
