// Package party is the event store: party creation with recurrence
// expansion, listings, the attendance state machine and the visibility
// policy for hosted parties.
package party

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulse/backend/internal/activity"
	"pulse/backend/internal/core"
	"pulse/backend/internal/models"
)

// Number of sibling rows created beyond the primary party.
var recurrenceSiblings = map[models.Recurrence]int{
	models.RecurrenceDaily:   6,
	models.RecurrenceWeekly:  3,
	models.RecurrenceMonthly: 2,
}

// Store is the event store.
type Store struct {
	db         *gorm.DB
	dispatcher *activity.Dispatcher
	log        *zap.Logger
	now        func() time.Time
}

func NewStore(db *gorm.DB, dispatcher *activity.Dispatcher, log *zap.Logger) *Store {
	return &Store{db: db, dispatcher: dispatcher, log: log, now: time.Now}
}

// CreateInput carries the attributes for a new party. Enum fields are
// pointers so that an absent value is distinguishable from the zero
// variant.
type CreateInput struct {
	PartyType    *models.PartyType
	PartySize    *models.PartySize
	Name         string
	Location     string
	Latitude     *float64
	Longitude    *float64
	InvitePolicy models.InvitePolicy
	Recurrence   models.Recurrence
	Month        int
	Day          int
	Year         int
	StartTime    string
	EndTime      string
	Description  string
	ImageURL     string
	InvitedIDs   []uint
}

func (in *CreateInput) validate() error {
	switch {
	case in.PartyType == nil:
		return core.MissingField("party_type")
	case in.Name == "":
		return core.MissingField("name")
	case in.Location == "":
		return core.MissingField("location")
	case in.PartySize == nil:
		return core.MissingField("party_size")
	case in.Month < 1 || in.Month > 12:
		return core.MissingField("party_month")
	case in.Day < 1 || in.Day > 31:
		return core.MissingField("party_day")
	case in.StartTime == "":
		return core.MissingField("start_time")
	}
	if _, _, ok := clock(in.StartTime); !ok {
		return core.MissingField("start_time")
	}
	if in.EndTime != "" {
		if _, _, ok := clock(in.EndTime); !ok {
			return core.MissingField("end_time")
		}
	}
	return nil
}

// Create validates the input, persists the party with the host
// pre-added to its attendees, and expands a non-none recurrence into
// independent sibling rows advancing the date by the recurrence unit.
// The invite allow-list is copied onto every sibling; invite
// notifications go out once, for the primary party.
func (s *Store) Create(ctx context.Context, hostID uint, in CreateInput) (*models.Party, error) {
	host, err := s.account(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Year == 0 {
		in.Year = s.now().Year()
	}

	invited := make([]*models.Account, 0, len(in.InvitedIDs))
	for _, id := range in.InvitedIDs {
		acct, err := s.account(ctx, id)
		if err != nil {
			return nil, err
		}
		invited = append(invited, acct)
	}

	total := 1 + recurrenceSiblings[in.Recurrence]
	var primary *models.Party

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := time.Date(in.Year, time.Month(in.Month), in.Day, 0, 0, 0, 0, time.Local)
		for i := 0; i < total; i++ {
			date := base
			switch in.Recurrence {
			case models.RecurrenceDaily:
				date = base.AddDate(0, 0, i)
			case models.RecurrenceWeekly:
				date = base.AddDate(0, 0, 7*i)
			case models.RecurrenceMonthly:
				date = base.AddDate(0, i, 0)
			}

			p := models.Party{
				HostID:       host.ID,
				Name:         in.Name,
				Location:     in.Location,
				Latitude:     in.Latitude,
				Longitude:    in.Longitude,
				PartyType:    *in.PartyType,
				PartySize:    *in.PartySize,
				InvitePolicy: in.InvitePolicy,
				Recurrence:   in.Recurrence,
				PartyMonth:   int(date.Month()),
				PartyDay:     date.Day(),
				PartyYear:    date.Year(),
				StartTime:    in.StartTime,
				EndTime:      in.EndTime,
				Description:  in.Description,
				ImageURL:     in.ImageURL,
				IsActive:     true,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if err := tx.Model(&p).Association("Attendees").Append(host); err != nil {
				return err
			}
			if len(invited) > 0 {
				if err := tx.Model(&p).Association("InvitedUsers").Append(invited); err != nil {
					return err
				}
			}
			if i == 0 {
				primary = &p
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, activity.Expand(activity.Transition{
		Kind:    activity.TransitionPartyCreated,
		Actor:   host,
		Party:   primary,
		Invited: invited,
	}))

	return s.GetByID(ctx, primary.ID)
}

// GetActive lists parties whose active flag is set, ordered by schedule
// ascending. Recurring parties dated strictly in the future are
// suppressed, so only the next occurring instance of a series shows up
// in the public list.
func (s *Store) GetActive(ctx context.Context) ([]models.Party, error) {
	var parties []models.Party
	err := s.db.WithContext(ctx).
		Preload("Host").Preload("Attendees").
		Where("is_active = ?", true).
		Order("party_year, party_month, party_day, start_time").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now())
	out := make([]models.Party, 0, len(parties))
	for _, p := range parties {
		if p.Recurrence != models.RecurrenceNone && scheduleDate(&p).After(today) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetHostedBy lists the parties a host is hosting, filtered by the
// visibility policy from the viewer's perspective.
func (s *Store) GetHostedBy(ctx context.Context, hostID, viewerID uint) ([]models.Party, error) {
	if _, err := s.account(ctx, hostID); err != nil {
		return nil, err
	}
	var parties []models.Party
	err := s.db.WithContext(ctx).
		Preload("Host").Preload("Attendees").Preload("InvitedUsers").
		Where("host_id = ?", hostID).
		Order("party_year, party_month, party_day, start_time").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Party, 0, len(parties))
	for _, p := range parties {
		if Visible(&p, viewerID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetAttending lists the parties the account is attending.
func (s *Store) GetAttending(ctx context.Context, accountID uint) ([]models.Party, error) {
	if _, err := s.account(ctx, accountID); err != nil {
		return nil, err
	}
	var parties []models.Party
	err := s.db.WithContext(ctx).
		Preload("Host").Preload("Attendees").
		Joins("JOIN party_attendees ON party_attendees.party_id = parties.id").
		Where("party_attendees.account_id = ?", accountID).
		Order("party_year, party_month, party_day, start_time").
		Find(&parties).Error
	return parties, err
}

// GetByID fetches a single party with its membership sets and
// reconciles the derived active flag against the schedule.
func (s *Store) GetByID(ctx context.Context, partyID uint) (*models.Party, error) {
	var p models.Party
	err := s.db.WithContext(ctx).
		Preload("Host").
		Preload("Attendees").Preload("Requesters").
		Preload("InvitedUsers").Preload("Likers").
		First(&p, partyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if err := s.reconcileActive(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// reconcileActive recomputes the derived active flag and persists it
// only when it changed. Safe to call any number of times.
func (s *Store) reconcileActive(ctx context.Context, p *models.Party) error {
	active := !Expired(p, s.now())
	if active == p.IsActive {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(p).Update("is_active", active).Error; err != nil {
		return err
	}
	return nil
}

// UpdateInput carries host-editable fields.
type UpdateInput struct {
	Name        string
	Location    string
	Description string
	StartTime   string
	EndTime     string
}

// Update edits a party. Host only.
func (s *Store) Update(ctx context.Context, partyID, actorID uint, in UpdateInput) (*models.Party, error) {
	p, err := s.partyRow(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if p.HostID != actorID {
		return nil, core.ErrPermissionDenied
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Location != "" {
		p.Location = in.Location
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.StartTime != "" {
		if _, _, ok := clock(in.StartTime); !ok {
			return nil, core.MissingField("start_time")
		}
		p.StartTime = in.StartTime
	}
	if in.EndTime != "" {
		if _, _, ok := clock(in.EndTime); !ok {
			return nil, core.MissingField("end_time")
		}
		p.EndTime = in.EndTime
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

// Delete removes a party. Host only.
func (s *Store) Delete(ctx context.Context, partyID, actorID uint) error {
	p, err := s.partyRow(ctx, partyID)
	if err != nil {
		return err
	}
	if p.HostID != actorID {
		return core.ErrPermissionDenied
	}
	return s.db.WithContext(ctx).Delete(p).Error
}

func (s *Store) account(ctx context.Context, id uint) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// partyRow fetches a party without preloading its membership sets.
func (s *Store) partyRow(ctx context.Context, id uint) (*models.Party, error) {
	var p models.Party
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// inSet checks join-table membership inside the given handle.
func inSet(tx *gorm.DB, table string, partyID, accountID uint) (bool, error) {
	var n int64
	err := tx.Table(table).
		Where("party_id = ? AND account_id = ?", partyID, accountID).
		Count(&n).Error
	return n > 0, err
}
