package party

import (
	"time"

	"pulse/backend/internal/models"
)

// clock parses an HH:MM string.
func clock(s string) (h, m int, ok bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// scheduleDate is the party's calendar date at midnight local time.
func scheduleDate(p *models.Party) time.Time {
	return time.Date(p.PartyYear, time.Month(p.PartyMonth), p.PartyDay,
		0, 0, 0, 0, time.Local)
}

// ExpiresAt returns the moment the party stops being active. An end
// clock earlier than the start clock means the party runs past
// midnight, so the expiry lands on the next day. Without an end time
// the party lasts until the end of its scheduled date.
func ExpiresAt(p *models.Party) time.Time {
	date := scheduleDate(p)

	eh, em, ok := clock(p.EndTime)
	if !ok {
		return date.Add(24*time.Hour - time.Second)
	}
	expiry := date.Add(time.Duration(eh)*time.Hour + time.Duration(em)*time.Minute)
	if sh, sm, ok := clock(p.StartTime); ok && eh*60+em < sh*60+sm {
		expiry = expiry.AddDate(0, 0, 1)
	}
	return expiry
}

// Expired reports whether the party's schedule has passed.
func Expired(p *models.Party, now time.Time) bool {
	return !now.Before(ExpiresAt(p))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
