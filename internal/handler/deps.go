package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse/backend/internal/core"
	"pulse/backend/internal/feed"
	"pulse/backend/internal/hub"
	"pulse/backend/internal/notify"
	"pulse/backend/internal/party"
	"pulse/backend/internal/social"
)

// Deps wires the business-logic services into the handler package.
type Deps struct {
	Graph         *social.Graph
	Parties       *party.Store
	Notifications *notify.Service
	Feed          *feed.Service
	Hub           *hub.Hub
}

var (
	socialGraph *social.Graph
	partyStore  *party.Store
	notifySvc   *notify.Service
	feedSvc     *feed.Service
	notifyHub   *hub.Hub
)

// Init must be called once at startup, before any route is served.
func Init(d Deps) {
	socialGraph = d.Graph
	partyStore = d.Parties
	notifySvc = d.Notifications
	feedSvc = d.Feed
	notifyHub = d.Hub
}

// respondServiceError maps the core error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, core.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, core.ErrSelfFollow), errors.Is(err, core.ErrSelfBlock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if ve, ok := core.IsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
