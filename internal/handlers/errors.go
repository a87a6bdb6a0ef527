package handlers

import (
	"errors"
	"log"
	"net/http"

	"todo-starter/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// handleServiceError converts service errors into responses. Authorization
// and validation errors keep their messages; anything else is logged with a
// tag and surfaced as a generic failure so backend internals never leak.
func handleServiceError(c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "not_authorized",
			"message": "You are not authorized to access this resource",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Resource not found",
		})
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	default:
		log.Printf("[%s] %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Something went wrong, please try again",
		})
	}
}

func callerID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return "", false
	}

	userIDStr, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Invalid user ID format",
		})
		return "", false
	}

	return userIDStr, true
}
