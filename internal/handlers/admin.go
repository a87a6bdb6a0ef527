package handlers

import (
	"net/http"

	"todo-starter/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// AdminHandler serves the statistics endpoints. Routes using it must sit
// behind middleware.RequireRole(models.RoleAdmin).
type AdminHandler struct {
	db           *gorm.DB
	statsService services.StatsService
}

func NewAdminHandler(db *gorm.DB, statsService services.StatsService) *AdminHandler {
	return &AdminHandler{db: db, statsService: statsService}
}

// PlatformStats aggregates todo statistics across every registered user.
func (h *AdminHandler) PlatformStats(c *gin.Context) {
	report, err := h.statsService.GetAllUsersTodoStats(h.db)
	if err != nil {
		handleServiceError(c, "admin.platform_stats", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UserStats returns the todo statistics for a single user.
func (h *AdminHandler) UserStats(c *gin.Context) {
	userID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "id must be a valid UUID",
		})
		return
	}

	stats, err := h.statsService.GetUserTodoStats(h.db, userID)
	if err != nil {
		handleServiceError(c, "admin.user_stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
