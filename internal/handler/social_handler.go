package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
)

// FollowResponse reports the outcome of a follow toggle.
type FollowResponse struct {
	NowFollowing   bool  `json:"now_following"`
	FollowersCount int64 `json:"followers_count"`
}

// FollowAccount godoc
// @Summary      Toggle following an account
// @Description  Follows the target account, or unfollows if already following. Following someone lifts any block you hold on them.
// @Tags         social
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target Account ID"
// @Success      200  {object}  FollowResponse
// @Failure      400  {object}  ErrorResponse "Cannot follow yourself"
// @Failure      404  {object}  ErrorResponse "Target account not found"
// @Router       /accounts/{id}/follow [post]
func FollowAccount(c *gin.Context) {
	viewerID := c.GetUint("accountID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	result, err := socialGraph.Follow(c.Request.Context(), viewerID, uint(targetID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, FollowResponse{
		NowFollowing:   result.NowFollowing,
		FollowersCount: result.FollowersCount,
	})
}

// BlockAccount godoc
// @Summary      Block an account
// @Description  Blocks the target account and severs follow edges in both directions. Blocking twice is a no-op.
// @Tags         social
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target Account ID"
// @Success      200  {object}  map[string]string "{"message": "Account blocked"}"
// @Failure      400  {object}  ErrorResponse "Cannot block yourself"
// @Failure      404  {object}  ErrorResponse "Target account not found"
// @Router       /accounts/{id}/block [post]
func BlockAccount(c *gin.Context) {
	viewerID := c.GetUint("accountID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	if err := socialGraph.Block(c.Request.Context(), viewerID, uint(targetID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account blocked"})
}

// GetFollowers godoc
// @Summary      List an account's followers
// @Description  Returns the accounts following the target. Private profiles expose this only to their followers.
// @Tags         social
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  social.FollowList
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /accounts/{id}/followers [get]
func GetFollowers(c *gin.Context) {
	ownerID, ok := gatedProfileOwner(c)
	if !ok {
		return
	}

	list, err := socialGraph.FollowersOf(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetFollowing godoc
// @Summary      List accounts an account follows
// @Description  Returns the accounts the target follows. Private profiles expose this only to their followers.
// @Tags         social
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  social.FollowList
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /accounts/{id}/following [get]
func GetFollowing(c *gin.Context) {
	ownerID, ok := gatedProfileOwner(c)
	if !ok {
		return
	}

	list, err := socialGraph.FollowingOf(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// gatedProfileOwner resolves the :id path param and applies the profile
// gates: a blocked viewer is rejected outright, and follower-gated
// content of a private profile is limited to accepted followers. It
// writes the error response itself when the viewer may not proceed.
func gatedProfileOwner(c *gin.Context) (uint, bool) {
	viewerID := c.GetUint("accountID")
	ownerID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return 0, false
	}
	ownerID := uint(ownerID64)

	var owner models.Account
	if err := database.DB.First(&owner, ownerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return 0, false
	}

	canView, err := socialGraph.CanViewProfile(c.Request.Context(), ownerID, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return 0, false
	}
	if !canView {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot view this profile"})
		return 0, false
	}

	if owner.IsPrivate && viewerID != ownerID {
		follows, err := socialGraph.IsFollowing(c.Request.Context(), viewerID, ownerID)
		if err != nil {
			respondServiceError(c, err)
			return 0, false
		}
		if !follows {
			c.JSON(http.StatusForbidden, gin.H{"error": "This profile is private"})
			return 0, false
		}
	}

	return ownerID, true
}
