package auth

import (
	"net/http"
	"pulse/backend/internal/database"
	"pulse/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// StaffMiddleware creates a gin middleware to check for the staff flag.
// It must be used AFTER the standard AuthMiddleware.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := c.Get("accountID")
		if !exists {
			// This should not happen if AuthMiddleware is used before it
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not authenticated"})
			return
		}

		var account models.Account
		if err := database.DB.First(&account, accountID.(uint)).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Authenticated account not found"})
			return
		}

		if !account.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		c.Next()
	}
}
