package models

import "gorm.io/gorm"

type PartyType int

const (
	PartyCustom PartyType = iota
	PartySocial
	PartyHoliday
	PartyEvent
	PartyRager
	PartyThemed
	PartyCelebration
)

type PartySize int

const (
	SizeSmall PartySize = iota
	SizeMedium
	SizeLarge
)

// InvitePolicy governs how non-host accounts join a party.
type InvitePolicy int

const (
	InviteOpen InvitePolicy = iota
	InviteOnly
	InviteRequestApproval
)

// Recurrence controls the one-time sibling fan-out at creation.
type Recurrence int

const (
	RecurrenceNone Recurrence = iota
	RecurrenceDaily
	RecurrenceWeekly
	RecurrenceMonthly
)

// Party represents a hosted gathering. The schedule is kept as discrete
// month/day/year plus HH:MM clock strings because the end time may be
// absent, and an end clock earlier than the start clock means the party
// runs past midnight.
type Party struct {
	gorm.Model
	HostID       uint    `gorm:"not null;index"`
	Host         Account `gorm:"foreignKey:HostID"`
	Name         string  `gorm:"size:80;not null"`
	Location     string  `gorm:"size:240;not null"`
	Latitude     *float64
	Longitude    *float64
	PartyType    PartyType    `gorm:"not null;default:0"`
	PartySize    PartySize    `gorm:"not null;default:0"`
	InvitePolicy InvitePolicy `gorm:"not null;default:0"`
	Recurrence   Recurrence   `gorm:"not null;default:0"`
	PartyMonth   int          `gorm:"not null"`
	PartyDay     int          `gorm:"not null"`
	PartyYear    int          `gorm:"not null"`
	StartTime    string       `gorm:"size:5;not null"`
	EndTime      string       `gorm:"size:5"`
	Description  string       `gorm:"size:500"`
	ImageURL     string       `gorm:"size:512"`
	IsActive     bool         `gorm:"not null;default:true"`

	Attendees    []*Account `gorm:"many2many:party_attendees;"`
	Requesters   []*Account `gorm:"many2many:party_requesters;"`
	InvitedUsers []*Account `gorm:"many2many:party_invited_users;"`
	Likers       []*Account `gorm:"many2many:party_likers;"`
}
