package party

import "pulse/backend/internal/models"

// Visible reports whether the viewer may see a hosted party in a
// listing. A party is hidden only when it is invite-only and the viewer
// is neither the host nor an attendee nor on the allow-list. The party
// must have its Attendees and InvitedUsers associations loaded.
func Visible(p *models.Party, viewerID uint) bool {
	if p.HostID == viewerID {
		return true
	}
	if p.InvitePolicy != models.InviteOnly {
		return true
	}
	return containsAccount(p.Attendees, viewerID) ||
		containsAccount(p.InvitedUsers, viewerID)
}

func containsAccount(set []*models.Account, id uint) bool {
	for _, a := range set {
		if a.ID == id {
			return true
		}
	}
	return false
}
