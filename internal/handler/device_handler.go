package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
)

// region --- DTOs ---

type DeviceInput struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=fcm apns"`
}

// endregion

// RegisterDevice godoc
// @Summary      Register a push device
// @Description  Registers a device token for push delivery. Re-registering an existing token reassigns it to the authenticated account.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body DeviceInput true "Device token and platform"
// @Success      201 {object} map[string]string "{"message": "Device registered"}"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /devices [post]
func RegisterDevice(c *gin.Context) {
	accountID := c.GetUint("accountID")

	var input DeviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device := models.Device{
		AccountID: accountID,
		Token:     input.Token,
		Platform:  models.DevicePlatform(input.Platform),
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "platform", "updated_at"}),
	}).Create(&device).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}

// UnregisterDevice godoc
// @Summary      Remove a push device
// @Description  Deletes a device token owned by the authenticated account.
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        token path string true "Device Token"
// @Success      200 {object} map[string]string "{"message": "Device removed"}"
// @Failure      401 {object} ErrorResponse
// @Router       /devices/{token} [delete]
func UnregisterDevice(c *gin.Context) {
	accountID := c.GetUint("accountID")
	token := c.Param("token")

	if err := database.DB.Where("account_id = ? AND token = ?", accountID, token).
		Delete(&models.Device{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device removed"})
}
