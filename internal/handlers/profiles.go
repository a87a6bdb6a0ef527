package handlers

import (
	"net/http"

	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db           *gorm.DB
	mediaService services.MediaService
}

func NewProfileHandler(db *gorm.DB, mediaService services.MediaService) *ProfileHandler {
	return &ProfileHandler{db: db, mediaService: mediaService}
}

type ProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (h *ProfileHandler) profileResponse(profile *models.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if url, err := h.mediaService.AvatarURL(h.db, profile.ID); err == nil {
		resp.AvatarURL = url
	}
	return resp
}

// Me returns the authenticated user's own profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}

	var profile models.Profile
	if err := h.db.First(&profile, "id = ?", callerStr).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Profile not found",
		})
		return
	}

	c.JSON(http.StatusOK, h.profileResponse(&profile))
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
}

// UpdateMe lets the caller change their own display name. Email, role and
// password are managed through dedicated flows.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}
	caller := uuid.FromStringOrNil(callerStr)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	var profile models.Profile
	if err := h.db.First(&profile, "id = ?", caller).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Profile not found",
		})
		return
	}

	profile.FullName = req.FullName
	if err := h.db.Save(&profile).Error; err != nil {
		handleServiceError(c, "profiles.update", err)
		return
	}

	c.JSON(http.StatusOK, h.profileResponse(&profile))
}
