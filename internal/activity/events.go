// Package activity turns committed state transitions into notification
// and feed events. Expansion is a pure function so the exact fan-out of
// any transition can be asserted in isolation; delivery is the
// Dispatcher's job.
package activity

import (
	"fmt"

	"pulse/backend/internal/models"
)

type Channel int

const (
	ChannelNotification Channel = iota
	ChannelFeed
)

// Event is one outbound record. RecipientID is zero for feed events,
// which have no recipient by definition.
type Event struct {
	Channel     Channel
	RecipientID uint
	Sender      models.EntityRef
	Verb        string
	Action      models.EntityRef
	Target      models.EntityRef
}

type TransitionKind int

const (
	// TransitionFollowed: Actor now follows Target.
	TransitionFollowed TransitionKind = iota
	// TransitionPartyCreated: Actor hosts Party; Invited holds the
	// allow-list present at creation.
	TransitionPartyCreated
	// TransitionAttending: Actor joined Party's attendees.
	TransitionAttending
	// TransitionRequested: Actor asked to attend Party.
	TransitionRequested
	// TransitionApproved: Actor (the host) approved Target's request
	// to attend Party.
	TransitionApproved
	// TransitionLiked: Actor liked Party.
	TransitionLiked
)

// Transition describes a state change that already committed.
type Transition struct {
	Kind    TransitionKind
	Actor   *models.Account
	Target  *models.Account
	Party   *models.Party
	Invited []*models.Account
}

// Expand maps a transition to the events it produces. A notification
// whose computed recipient is its own sender is dropped silently, so
// nothing an account does to itself ever notifies it.
func Expand(t Transition) []Event {
	var events []Event

	notify := func(recipientID uint, verb string, target models.EntityRef) {
		e := Event{
			Channel:     ChannelNotification,
			RecipientID: recipientID,
			Sender:      models.AccountRef(t.Actor.ID),
			Verb:        verb,
			Target:      target,
		}
		if e.Sender.Kind == models.EntityAccount && e.Sender.ID == recipientID {
			return
		}
		events = append(events, e)
	}
	feed := func(sender models.EntityRef, verb string, target models.EntityRef) {
		events = append(events, Event{
			Channel: ChannelFeed,
			Sender:  sender,
			Verb:    verb,
			Target:  target,
		})
	}

	switch t.Kind {
	case TransitionFollowed:
		notify(t.Target.ID,
			fmt.Sprintf("%s is following you", t.Actor.FullName),
			models.AccountRef(t.Target.ID))

	case TransitionPartyCreated:
		feed(models.AccountRef(t.Actor.ID), "is hosting a party",
			models.PartyRef(t.Party.ID))
		for _, invitee := range t.Invited {
			notify(invitee.ID,
				fmt.Sprintf("%s invited you to their party", t.Actor.FullName),
				models.PartyRef(t.Party.ID))
		}

	case TransitionAttending:
		notify(t.Party.HostID,
			fmt.Sprintf("%s will be attending your party", t.Actor.FullName),
			models.PartyRef(t.Party.ID))
		feed(models.AccountRef(t.Actor.ID), "is attending a party",
			models.PartyRef(t.Party.ID))

	case TransitionRequested:
		notify(t.Party.HostID,
			fmt.Sprintf("%s requested to attend your party", t.Actor.FullName),
			models.PartyRef(t.Party.ID))

	case TransitionApproved:
		notify(t.Target.ID,
			fmt.Sprintf("%s approved your request to attend", t.Actor.FullName),
			models.PartyRef(t.Party.ID))
		feed(models.AccountRef(t.Target.ID), "is attending a party",
			models.PartyRef(t.Party.ID))

	case TransitionLiked:
		notify(t.Party.HostID,
			fmt.Sprintf("%s likes your party", t.Actor.FullName),
			models.PartyRef(t.Party.ID))
	}

	return events
}
