package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"pulse/backend/internal/database"
	"pulse/backend/internal/models"
	"pulse/backend/pkg/jwt"
)

// region --- DTOs ---

// RegisterInput defines the structure for account registration.
type RegisterInput struct {
	FullName string `json:"full_name" binding:"required" example:"Test User"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for account login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// PublicAccountResponse defines the structure for an account's public profile.
type PublicAccountResponse struct {
	ID             uint   `json:"id" example:"1"`
	FullName       string `json:"full_name" example:"Test User"`
	ProfilePicURL  string `json:"profile_pic_url"`
	IsPrivate      bool   `json:"is_private"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	IsFollowing    bool   `json:"is_following"`
}

// PrivateAccountResponse defines the structure for the authenticated
// account's own profile.
type PrivateAccountResponse struct {
	ID             uint   `json:"id" example:"1"`
	FullName       string `json:"full_name" example:"Test User"`
	Email          string `json:"email" example:"test@example.com"`
	ProfilePicURL  string `json:"profile_pic_url"`
	IsPrivate      bool   `json:"is_private"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

func buildPublicAccountResponse(c *gin.Context, account models.Account, viewerID uint) PublicAccountResponse {
	followers, _ := socialGraph.FollowersOf(c.Request.Context(), account.ID)
	following, _ := socialGraph.FollowingOf(c.Request.Context(), account.ID)
	isFollowing := false
	if viewerID != 0 && viewerID != account.ID {
		isFollowing, _ = socialGraph.IsFollowing(c.Request.Context(), viewerID, account.ID)
	}
	return PublicAccountResponse{
		ID:             account.ID,
		FullName:       account.FullName,
		ProfilePicURL:  account.ProfilePicURL,
		IsPrivate:      account.IsPrivate,
		FollowersCount: followers.Count,
		FollowingCount: following.Count,
		IsFollowing:    isFollowing,
	}
}

// endregion

// region --- Auth Handlers ---

// RegisterAccount godoc
// @Summary      Register a new account
// @Description  Creates a new account and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterAccount(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Account
	if err := database.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	account := models.Account{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Gender:       models.GenderNoAnswer,
		IsActive:     true,
	}
	if err := database.DB.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	token, err := jwt.GenerateToken(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginAccount godoc
// @Summary      Log in
// @Description  Authenticates an account with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "Account not found"
// @Router       /auth/login [post]
func LoginAccount(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var account models.Account
	if err := database.DB.Where("email = ?", input.Email).First(&account).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	if !account.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- Account Handlers ---

// GetMe godoc
// @Summary      Get own profile
// @Description  Retrieves the full profile of the authenticated account.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateAccountResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/me [get]
func GetMe(c *gin.Context) {
	accountID := c.GetUint("accountID")

	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	followers, _ := socialGraph.FollowersOf(c.Request.Context(), account.ID)
	following, _ := socialGraph.FollowingOf(c.Request.Context(), account.ID)

	c.JSON(http.StatusOK, PrivateAccountResponse{
		ID:             account.ID,
		FullName:       account.FullName,
		Email:          account.Email,
		ProfilePicURL:  account.ProfilePicURL,
		IsPrivate:      account.IsPrivate,
		FollowersCount: followers.Count,
		FollowingCount: following.Count,
	})
}

// GetAccountByID godoc
// @Summary      Get account by ID
// @Description  Retrieves the public profile for an account. Returns 403 if the owner has blocked the viewer.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  PublicAccountResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /accounts/{id} [get]
func GetAccountByID(c *gin.Context) {
	viewerID := c.GetUint("accountID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	var account models.Account
	if err := database.DB.First(&account, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	canView, err := socialGraph.CanViewProfile(c.Request.Context(), account.ID, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !canView {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot view this profile"})
		return
	}

	c.JSON(http.StatusOK, buildPublicAccountResponse(c, account, viewerID))
}

// SearchAccounts godoc
// @Summary      Search for accounts
// @Description  Searches for accounts by name with pagination.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for name"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicAccountResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /accounts [get]
func SearchAccounts(c *gin.Context) {
	viewerID := c.GetUint("accountID")
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Account{}).Where("is_active = ?", true)
	if q := c.Query("q"); q != "" {
		query = query.Where("full_name ILIKE ?", "%"+q+"%")
	}

	result, err := Paginate[models.Account](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search accounts"})
		return
	}

	responses := make([]PublicAccountResponse, 0, len(result.Data))
	for _, account := range result.Data {
		if account.ID == viewerID {
			continue
		}
		responses = append(responses, buildPublicAccountResponse(c, account, viewerID))
	}

	c.JSON(http.StatusOK, PaginatedResponse[PublicAccountResponse]{
		Data: responses,
		Meta: result.Meta,
	})
}

// TogglePrivacy godoc
// @Summary      Toggle profile privacy
// @Description  Flips the private flag on the authenticated account and returns the new state.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]bool "{"is_private": true}"
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/me/privacy [post]
func TogglePrivacy(c *gin.Context) {
	accountID := c.GetUint("accountID")

	state, err := socialGraph.TogglePrivacy(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_private": state})
}

// DeactivateMe godoc
// @Summary      Deactivate own account
// @Description  Soft-deactivates the authenticated account. The row is never hard-deleted.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string "{"message": "Account deactivated"}"
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/me/deactivate [post]
func DeactivateMe(c *gin.Context) {
	accountID := c.GetUint("accountID")

	if err := database.DB.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

// endregion
