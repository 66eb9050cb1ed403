package models

// EntityKind names the closed set of entities a notification or feed
// item may reference.
type EntityKind string

const (
	EntityAccount EntityKind = "account"
	EntityParty   EntityKind = "party"
)

// EntityRef points at an account or a party. A zero Kind means the
// reference is absent, which is how the optional action/target slots
// are represented in storage.
type EntityRef struct {
	Kind EntityKind `gorm:"size:16"`
	ID   uint
}

func AccountRef(id uint) EntityRef { return EntityRef{Kind: EntityAccount, ID: id} }

func PartyRef(id uint) EntityRef { return EntityRef{Kind: EntityParty, ID: id} }

func (r EntityRef) IsZero() bool { return r.Kind == "" }
