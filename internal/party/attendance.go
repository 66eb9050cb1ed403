package party

import (
	"context"

	"gorm.io/gorm"

	"pulse/backend/internal/activity"
	"pulse/backend/internal/core"
	"pulse/backend/internal/models"
)

// AttendanceStatus is the state of a (party, account) pair.
type AttendanceStatus int

const (
	NotAttending AttendanceStatus = iota
	RequestedApproval
	Attending
)

// Attend toggles the actor's attendance on a party.
//
// An attending actor always drops off the attendee list, whatever the
// invite policy. Otherwise the outcome depends on the policy: open
// parties admit directly, request-approval parties queue the actor for
// the host (or cancel a pending request on a second toggle), and
// invite-only parties admit only allow-listed actors, silently ignoring
// everyone else. The host bypasses every gate on their own party.
// Membership lives in sets, so concurrent toggles cannot duplicate an
// attendee.
func (s *Store) Attend(ctx context.Context, partyID, actorID uint) (AttendanceStatus, error) {
	p, err := s.partyRow(ctx, partyID)
	if err != nil {
		return NotAttending, err
	}
	actor, err := s.account(ctx, actorID)
	if err != nil {
		return NotAttending, err
	}

	status := NotAttending
	var events []activity.Event

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attending, err := inSet(tx, "party_attendees", p.ID, actor.ID)
		if err != nil {
			return err
		}
		if attending {
			return tx.Model(p).Association("Attendees").Delete(actor)
		}

		if actor.ID == p.HostID {
			status = Attending
			return tx.Model(p).Association("Attendees").Append(actor)
		}

		switch p.InvitePolicy {
		case models.InviteOpen:
			if err := tx.Model(p).Association("Attendees").Append(actor); err != nil {
				return err
			}
			status = Attending
			events = activity.Expand(activity.Transition{
				Kind: activity.TransitionAttending, Actor: actor, Party: p,
			})

		case models.InviteRequestApproval:
			requested, err := inSet(tx, "party_requesters", p.ID, actor.ID)
			if err != nil {
				return err
			}
			if requested {
				// Second toggle cancels the pending request.
				return tx.Model(p).Association("Requesters").Delete(actor)
			}
			if err := tx.Model(p).Association("Requesters").Append(actor); err != nil {
				return err
			}
			status = RequestedApproval
			events = activity.Expand(activity.Transition{
				Kind: activity.TransitionRequested, Actor: actor, Party: p,
			})

		case models.InviteOnly:
			invited, err := inSet(tx, "party_invited_users", p.ID, actor.ID)
			if err != nil {
				return err
			}
			if !invited {
				return nil
			}
			if err := tx.Model(p).Association("Attendees").Append(actor); err != nil {
				return err
			}
			status = Attending
			events = activity.Expand(activity.Transition{
				Kind: activity.TransitionAttending, Actor: actor, Party: p,
			})
		}
		return nil
	})
	if err != nil {
		return NotAttending, err
	}

	s.dispatcher.Dispatch(ctx, events)
	return status, nil
}

// Approve moves a requester into the attendees set. Host only. Calling
// it for an account with no pending request is a no-op, so retries are
// harmless. The removal and the addition commit together.
func (s *Store) Approve(ctx context.Context, partyID, hostID, requesterID uint) error {
	p, err := s.partyRow(ctx, partyID)
	if err != nil {
		return err
	}
	if p.HostID != hostID {
		return core.ErrPermissionDenied
	}
	host, err := s.account(ctx, hostID)
	if err != nil {
		return err
	}
	requester, err := s.account(ctx, requesterID)
	if err != nil {
		return err
	}

	moved := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requested, err := inSet(tx, "party_requesters", p.ID, requester.ID)
		if err != nil {
			return err
		}
		if !requested {
			return nil
		}
		if err := tx.Model(p).Association("Requesters").Delete(requester); err != nil {
			return err
		}
		if err := tx.Model(p).Association("Attendees").Append(requester); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return err
	}

	if moved {
		s.dispatcher.Dispatch(ctx, activity.Expand(activity.Transition{
			Kind:   activity.TransitionApproved,
			Actor:  host,
			Target: requester,
			Party:  p,
		}))
	}
	return nil
}

// Deny drops a pending request. Host only. No notification goes out.
func (s *Store) Deny(ctx context.Context, partyID, hostID, requesterID uint) error {
	p, err := s.partyRow(ctx, partyID)
	if err != nil {
		return err
	}
	if p.HostID != hostID {
		return core.ErrPermissionDenied
	}
	requester, err := s.account(ctx, requesterID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(p).Association("Requesters").Delete(requester)
}

// ToggleLike flips the actor's like on a party and reports the new
// state. Liking notifies the host.
func (s *Store) ToggleLike(ctx context.Context, partyID, actorID uint) (bool, error) {
	p, err := s.partyRow(ctx, partyID)
	if err != nil {
		return false, err
	}
	actor, err := s.account(ctx, actorID)
	if err != nil {
		return false, err
	}

	liked := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		has, err := inSet(tx, "party_likers", p.ID, actor.ID)
		if err != nil {
			return err
		}
		if has {
			return tx.Model(p).Association("Likers").Delete(actor)
		}
		liked = true
		return tx.Model(p).Association("Likers").Append(actor)
	})
	if err != nil {
		return false, err
	}

	if liked {
		s.dispatcher.Dispatch(ctx, activity.Expand(activity.Transition{
			Kind: activity.TransitionLiked, Actor: actor, Party: p,
		}))
	}
	return liked, nil
}
