package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pulse/backend/internal/models"
	"pulse/backend/internal/party"
)

// region --- DTOs ---

type PartyInput struct {
	PartyType    *int     `json:"party_type" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PartySize    *int     `json:"party_size" binding:"required"`
	InvitePolicy int      `json:"invite_policy"`
	Recurrence   int      `json:"recurrence"`
	PartyMonth   int      `json:"party_month" binding:"required"`
	PartyDay     int      `json:"party_day" binding:"required"`
	PartyYear    int      `json:"party_year"`
	StartTime    string   `json:"start_time" binding:"required"`
	EndTime      string   `json:"end_time"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"image_url"`
	InvitedIDs   []uint   `json:"invited_ids"`
}

type PartyUpdateInput struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type AccountSummary struct {
	ID            uint   `json:"id"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
}

type PartyResponse struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	Location     string           `json:"location"`
	Latitude     *float64         `json:"latitude,omitempty"`
	Longitude    *float64         `json:"longitude,omitempty"`
	PartyType    int              `json:"party_type"`
	PartySize    int              `json:"party_size"`
	InvitePolicy int              `json:"invite_policy"`
	Recurrence   int              `json:"recurrence"`
	PartyMonth   int              `json:"party_month"`
	PartyDay     int              `json:"party_day"`
	PartyYear    int              `json:"party_year"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time,omitempty"`
	Description  string           `json:"description,omitempty"`
	ImageURL     string           `json:"image_url,omitempty"`
	IsActive     bool             `json:"is_active"`
	Host         AccountSummary   `json:"host"`
	Attendees    []AccountSummary `json:"attendees"`
	LikersCount  int              `json:"likers_count"`
	// Requesters is only populated for the host.
	Requesters []AccountSummary `json:"requesters,omitempty"`
}

func summarize(accounts []*models.Account) []AccountSummary {
	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountSummary{
			ID:            a.ID,
			FullName:      a.FullName,
			ProfilePicURL: a.ProfilePicURL,
		})
	}
	return out
}

func newPartyResponse(p *models.Party, viewerID uint) PartyResponse {
	resp := PartyResponse{
		ID:           p.ID,
		Name:         p.Name,
		Location:     p.Location,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		PartyType:    int(p.PartyType),
		PartySize:    int(p.PartySize),
		InvitePolicy: int(p.InvitePolicy),
		Recurrence:   int(p.Recurrence),
		PartyMonth:   p.PartyMonth,
		PartyDay:     p.PartyDay,
		PartyYear:    p.PartyYear,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		IsActive:     p.IsActive,
		Host: AccountSummary{
			ID:            p.Host.ID,
			FullName:      p.Host.FullName,
			ProfilePicURL: p.Host.ProfilePicURL,
		},
		Attendees:   summarize(p.Attendees),
		LikersCount: len(p.Likers),
	}
	if viewerID == p.HostID {
		resp.Requesters = summarize(p.Requesters)
	}
	return resp
}

func attendanceLabel(s party.AttendanceStatus) string {
	switch s {
	case party.Attending:
		return "attending"
	case party.RequestedApproval:
		return "requested"
	default:
		return "not_attending"
	}
}

// endregion

// CreateParty godoc
// @Summary      Create a new party
// @Description  Creates a party hosted by the authenticated account. A non-none recurrence expands into independent sibling parties.
// @Tags         parties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PartyInput true "Party Info"
// @Success      201  {object}  PartyResponse
// @Failure      400  {object}  ErrorResponse "Missing required field"
// @Failure      401  {object}  ErrorResponse
// @Router       /parties [post]
func CreateParty(c *gin.Context) {
	hostID := c.GetUint("accountID")

	var input PartyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := party.CreateInput{
		Name:         input.Name,
		Location:     input.Location,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		InvitePolicy: models.InvitePolicy(input.InvitePolicy),
		Recurrence:   models.Recurrence(input.Recurrence),
		Month:        input.PartyMonth,
		Day:          input.PartyDay,
		Year:         input.PartyYear,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		InvitedIDs:   input.InvitedIDs,
	}
	if input.PartyType != nil {
		t := models.PartyType(*input.PartyType)
		in.PartyType = &t
	}
	if input.PartySize != nil {
		s := models.PartySize(*input.PartySize)
		in.PartySize = &s
	}

	created, err := partyStore.Create(c.Request.Context(), hostID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newPartyResponse(created, hostID))
}

// GetActiveParties godoc
// @Summary      List active parties
// @Description  Lists active parties ordered by schedule. Only the next instance of a recurring series is shown.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} PartyResponse
// @Router       /parties [get]
func GetActiveParties(c *gin.Context) {
	viewerID := c.GetUint("accountID")

	parties, err := partyStore.GetActive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]PartyResponse, 0, len(parties))
	for i := range parties {
		response = append(response, newPartyResponse(&parties[i], viewerID))
	}
	c.JSON(http.StatusOK, response)
}

// GetParty godoc
// @Summary      Get a party by ID
// @Description  Gets full details for a single party. Invite-only parties are hidden from accounts that are neither attending nor invited.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Party ID"
// @Success      200 {object} PartyResponse
// @Failure      404 {object} ErrorResponse "Party not found"
// @Router       /parties/{id} [get]
func GetParty(c *gin.Context) {
	viewerID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))

	p, err := partyStore.GetByID(c.Request.Context(), uint(partyID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !party.Visible(p, viewerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, newPartyResponse(p, viewerID))
}

// GetHostedParties godoc
// @Summary      List parties hosted by an account
// @Description  Lists an account's hosted parties, filtered by the visibility policy from the viewer's perspective.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Host Account ID"
// @Success      200 {array} PartyResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /accounts/{id}/parties [get]
func GetHostedParties(c *gin.Context) {
	viewerID := c.GetUint("accountID")
	hostID, ok := gatedProfileOwner(c)
	if !ok {
		return
	}

	parties, err := partyStore.GetHostedBy(c.Request.Context(), hostID, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]PartyResponse, 0, len(parties))
	for i := range parties {
		response = append(response, newPartyResponse(&parties[i], viewerID))
	}
	c.JSON(http.StatusOK, response)
}

// GetAttendingParties godoc
// @Summary      List parties the authenticated account attends
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} PartyResponse
// @Router       /parties/attending [get]
func GetAttendingParties(c *gin.Context) {
	accountID := c.GetUint("accountID")

	parties, err := partyStore.GetAttending(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]PartyResponse, 0, len(parties))
	for i := range parties {
		response = append(response, newPartyResponse(&parties[i], accountID))
	}
	c.JSON(http.StatusOK, response)
}

// AttendParty godoc
// @Summary      Toggle attendance on a party
// @Description  Joins, requests to join, or leaves a party depending on the current state and invite policy.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Party ID"
// @Success      200 {object} map[string]string "{"status": "attending"}"
// @Failure      404 {object} ErrorResponse "Party not found"
// @Router       /parties/{id}/attend [post]
func AttendParty(c *gin.Context) {
	actorID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))

	status, err := partyStore.Attend(c.Request.Context(), uint(partyID), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": attendanceLabel(status)})
}

// ApproveRequest godoc
// @Summary      Approve an attendance request (Host only)
// @Description  Moves the requester into the attendees. Calling it again for the same account is a harmless no-op.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id        path int true "Party ID"
// @Param        accountID path int true "Requester Account ID"
// @Success      200 {object} map[string]string "{"message": "Request approved"}"
// @Failure      403 {object} ErrorResponse "Only the host can approve requests"
// @Failure      404 {object} ErrorResponse
// @Router       /parties/{id}/requesters/{accountID}/approve [post]
func ApproveRequest(c *gin.Context) {
	hostID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))
	requesterID, _ := strconv.Atoi(c.Param("accountID"))

	if err := partyStore.Approve(c.Request.Context(), uint(partyID), hostID, uint(requesterID)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request approved"})
}

// DenyRequest godoc
// @Summary      Deny an attendance request (Host only)
// @Description  Drops the pending request. The requester is not notified.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id        path int true "Party ID"
// @Param        accountID path int true "Requester Account ID"
// @Success      200 {object} map[string]string "{"message": "Request denied"}"
// @Failure      403 {object} ErrorResponse "Only the host can deny requests"
// @Failure      404 {object} ErrorResponse
// @Router       /parties/{id}/requesters/{accountID}/deny [post]
func DenyRequest(c *gin.Context) {
	hostID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))
	requesterID, _ := strconv.Atoi(c.Param("accountID"))

	if err := partyStore.Deny(c.Request.Context(), uint(partyID), hostID, uint(requesterID)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request denied"})
}

// LikeParty godoc
// @Summary      Toggle a like on a party
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Party ID"
// @Success      200 {object} map[string]bool "{"liked": true}"
// @Failure      404 {object} ErrorResponse "Party not found"
// @Router       /parties/{id}/like [post]
func LikeParty(c *gin.Context) {
	actorID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))

	liked, err := partyStore.ToggleLike(c.Request.Context(), uint(partyID), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// UpdateParty godoc
// @Summary      Update a party (Host only)
// @Tags         parties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Party ID"
// @Param        input body      PartyUpdateInput true  "New Party Info"
// @Success      200   {object}  PartyResponse
// @Failure      403   {object}  ErrorResponse "Only the host can update the party"
// @Failure      404   {object}  ErrorResponse "Party not found"
// @Router       /parties/{id} [put]
func UpdateParty(c *gin.Context) {
	actorID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))

	var input PartyUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := partyStore.Update(c.Request.Context(), uint(partyID), actorID, party.UpdateInput{
		Name:        input.Name,
		Location:    input.Location,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPartyResponse(updated, actorID))
}

// DeleteParty godoc
// @Summary      Delete a party (Host only)
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Party ID"
// @Success      200 {object} map[string]string "{"message": "Party deleted"}"
// @Failure      403 {object} ErrorResponse "Only the host can delete the party"
// @Failure      404 {object} ErrorResponse "Party not found"
// @Router       /parties/{id} [delete]
func DeleteParty(c *gin.Context) {
	actorID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))

	if err := partyStore.Delete(c.Request.Context(), uint(partyID), actorID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Party deleted"})
}
