package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/backend/internal/hub"
	"pulse/backend/internal/models"
)

// region --- DTOs ---

type EntityRefResponse struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id"`
}

type NotificationResponse struct {
	ID        uint               `json:"id"`
	Sender    EntityRefResponse  `json:"sender"`
	Verb      string             `json:"verb"`
	Action    *EntityRefResponse `json:"action,omitempty"`
	Target    *EntityRefResponse `json:"target,omitempty"`
	Read      bool               `json:"read"`
	CreatedAt string             `json:"created_at"`
}

func refResponse(r models.EntityRef) *EntityRefResponse {
	if r.IsZero() {
		return nil
	}
	return &EntityRefResponse{Kind: string(r.Kind), ID: r.ID}
}

func newNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Sender:    EntityRefResponse{Kind: string(n.Sender.Kind), ID: n.Sender.ID},
		Verb:      n.Verb,
		Action:    refResponse(n.Action),
		Target:    refResponse(n.Target),
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// endregion

// GetNotifications godoc
// @Summary      List notifications
// @Description  Returns the authenticated account's most recent notifications and marks them all as read.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} NotificationResponse
// @Failure      401 {object} ErrorResponse
// @Router       /notifications [get]
func GetNotifications(c *gin.Context) {
	accountID := c.GetUint("accountID")

	notifications, err := notifySvc.ListAndMarkRead(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		response = append(response, newNotificationResponse(&notifications[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetUnreadCount godoc
// @Summary      Get unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64 "{"unread": 3}"
// @Failure      401 {object} ErrorResponse
// @Router       /notifications/unread [get]
func GetUnreadCount(c *gin.Context) {
	accountID := c.GetUint("accountID")

	count, err := notifySvc.UnreadCount(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// StreamNotifications godoc
// @Summary      Stream notifications over SSE
// @Description  Opens a Server-Sent Events stream that pushes each new notification as it is created.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200 {string} string "SSE stream of notification events"
// @Failure      401 {object} ErrorResponse
// @Router       /notifications/stream [get]
func StreamNotifications(c *gin.Context) {
	accountID := c.GetUint("accountID")

	client := make(hub.Client, 10)
	notifyHub.Subscribe(accountID, client)
	defer notifyHub.Unsubscribe(accountID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(message))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
