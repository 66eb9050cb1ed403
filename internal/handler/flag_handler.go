package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
)

// region --- DTOs ---

type FlagInput struct {
	Comment string `json:"comment"`
}

type FlagResponse struct {
	ID        uint           `json:"id"`
	PartyID   uint           `json:"party_id"`
	PartyName string         `json:"party_name"`
	Creator   AccountSummary `json:"creator"`
	Comment   string         `json:"comment"`
	Resolved  bool           `json:"resolved"`
	FlagCount uint           `json:"flag_count"`
	CreatedAt string         `json:"created_at"`
}

func newFlagResponse(f *models.Flag) FlagResponse {
	return FlagResponse{
		ID:        f.ID,
		PartyID:   f.PartyID,
		PartyName: f.Party.Name,
		Creator: AccountSummary{
			ID:            f.Creator.ID,
			FullName:      f.Creator.FullName,
			ProfilePicURL: f.Creator.ProfilePicURL,
		},
		Comment:   f.Comment,
		Resolved:  f.Resolved,
		FlagCount: f.FlagCount,
		CreatedAt: f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// endregion

// FlagParty godoc
// @Summary      Flag a party
// @Description  Reports a party for review. Flagging the same party again bumps the existing report instead of duplicating it.
// @Tags         flags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int       true  "Party ID"
// @Param        input body FlagInput false "Optional comment"
// @Success      200 {object} map[string]string "{"message": "Party flagged"}"
// @Failure      404 {object} ErrorResponse "Party not found"
// @Router       /parties/{id}/flag [post]
func FlagParty(c *gin.Context) {
	creatorID := c.GetUint("accountID")
	partyID, _ := strconv.Atoi(c.Param("id"))

	var input FlagInput
	_ = c.ShouldBindJSON(&input)

	var p models.Party
	if err := database.DB.First(&p, partyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var flag models.Flag
		err := tx.Where("creator_id = ? AND party_id = ?", creatorID, partyID).First(&flag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flag = models.Flag{
				CreatorID: creatorID,
				PartyID:   uint(partyID),
				Comment:   input.Comment,
				FlagCount: 1,
			}
			if err := tx.Create(&flag).Error; err != nil {
				return err
			}
			// The host's running total only counts distinct reporters.
			return tx.Model(&models.Account{}).Where("id = ?", p.HostID).
				UpdateColumn("times_flagged", gorm.Expr("times_flagged + 1")).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"flag_count": gorm.Expr("flag_count + 1")}
		if input.Comment != "" {
			updates["comment"] = input.Comment
		}
		return tx.Model(&flag).Updates(updates).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to flag party"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Party flagged"})
}

// GetFlags godoc
// @Summary      List flags (Staff only)
// @Description  Lists party flags for review, unresolved first.
// @Tags         flags
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[FlagResponse]
// @Failure      403 {object} ErrorResponse
// @Router       /admin/flags [get]
func GetFlags(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Flag{}).
		Preload("Creator").Preload("Party").
		Order("resolved asc, created_at desc")

	paginated, err := Paginate[models.Flag](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch flags"})
		return
	}

	response := make([]FlagResponse, 0, len(paginated.Data))
	for i := range paginated.Data {
		response = append(response, newFlagResponse(&paginated.Data[i]))
	}
	c.JSON(http.StatusOK, PaginatedResponse[FlagResponse]{
		Data: response,
		Meta: paginated.Meta,
	})
}

// ResolveFlag godoc
// @Summary      Resolve a flag (Staff only)
// @Tags         flags
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Flag ID"
// @Success      200 {object} map[string]string "{"message": "Flag resolved"}"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Flag not found"
// @Router       /admin/flags/{id}/resolve [post]
func ResolveFlag(c *gin.Context) {
	flagID, _ := strconv.Atoi(c.Param("id"))

	var flag models.Flag
	if err := database.DB.First(&flag, flagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flag not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	if err := database.DB.Model(&flag).Update("resolved", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve flag"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Flag resolved"})
}
