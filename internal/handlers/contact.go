package handlers

import (
	"net/http"

	"todo-starter/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContactHandler struct {
	db             *gorm.DB
	contactService services.ContactService
}

func NewContactHandler(db *gorm.DB, contactService services.ContactService) *ContactHandler {
	return &ContactHandler{db: db, contactService: contactService}
}

// Submit accepts a contact form and queues a notification email to every
// administrator. The endpoint is public.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form services.ContactForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if err := h.contactService.SubmitContactForm(c.Request.Context(), h.db, form); err != nil {
		handleServiceError(c, "contact.submit", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Your message has been sent"})
}
