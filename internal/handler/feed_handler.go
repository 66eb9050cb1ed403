package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/backend/internal/models"
)

// region --- DTOs ---

type FeedItemResponse struct {
	ID        uint               `json:"id"`
	Sender    EntityRefResponse  `json:"sender"`
	Verb      string             `json:"verb"`
	Action    *EntityRefResponse `json:"action,omitempty"`
	Target    *EntityRefResponse `json:"target,omitempty"`
	CreatedAt string             `json:"created_at"`
}

func newFeedItemResponse(item *models.FeedItem) FeedItemResponse {
	return FeedItemResponse{
		ID:        item.ID,
		Sender:    EntityRefResponse{Kind: string(item.Sender.Kind), ID: item.Sender.ID},
		Verb:      item.Verb,
		Action:    refResponse(item.Action),
		Target:    refResponse(item.Target),
		CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// endregion

// GetFeed godoc
// @Summary      Get the activity feed
// @Description  Returns recent activity from the authenticated account and every account it follows, newest first.
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max items to return" default(100)
// @Success      200 {array} FeedItemResponse
// @Failure      401 {object} ErrorResponse
// @Router       /feed [get]
func GetFeed(c *gin.Context) {
	accountID := c.GetUint("accountID")
	limit := intQuery(c, "limit", 0)

	items, err := feedSvc.ForAccount(c.Request.Context(), accountID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]FeedItemResponse, 0, len(items))
	for i := range items {
		response = append(response, newFeedItemResponse(&items[i]))
	}
	c.JSON(http.StatusOK, response)
}
