package models

import "gorm.io/gorm"

// Flag marks a party as reported by an account. Repeated reports by the
// same account bump the counter on the existing row.
type Flag struct {
	gorm.Model
	CreatorID uint    `gorm:"not null;index:idx_flag_pair,unique"`
	Creator   Account `gorm:"foreignKey:CreatorID"`
	PartyID   uint    `gorm:"not null;index:idx_flag_pair,unique"`
	Party     Party   `gorm:"foreignKey:PartyID"`
	Comment   string  `gorm:"size:500"`
	Resolved  bool    `gorm:"not null;default:false;index"`
	FlagCount uint    `gorm:"not null;default:0"`
}
