package models

import "gorm.io/gorm"

type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
	GenderNoAnswer
)

// Account represents a registered user in the system.
type Account struct {
	gorm.Model
	FullName      string `gorm:"size:100;not null"`
	Email         string `gorm:"size:120;unique;not null"`
	PasswordHash  string `gorm:"size:255;not null"`
	Gender        Gender `gorm:"not null;default:2"`
	ProfilePicURL string `gorm:"size:512"`
	IsPrivate     bool   `gorm:"not null;default:false"`
	IsActive      bool   `gorm:"not null;default:true"`
	IsStaff       bool   `gorm:"not null;default:false;index"`
	TimesFlagged  uint   `gorm:"not null;default:0"`

	// Accounts this account has blocked. Directed and asymmetric:
	// A blocking B says nothing about B blocking A.
	Blocking []*Account `gorm:"many2many:account_blocks;joinForeignKey:AccountID;joinReferences:BlockedID"`
}
