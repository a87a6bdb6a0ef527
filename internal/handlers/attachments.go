package handlers

import (
	"io"
	"net/http"

	"todo-starter/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type AttachmentHandler struct {
	db           *gorm.DB
	mediaService services.MediaService
}

func NewAttachmentHandler(db *gorm.DB, mediaService services.MediaService) *AttachmentHandler {
	return &AttachmentHandler{db: db, mediaService: mediaService}
}

// UploadTodoAttachments accepts a multipart batch under the "files" field and
// runs the upload pipeline over it in input order. When a file fails, the
// response still lists the attachments recorded before the failure so the
// caller can report partial success.
func (h *AttachmentHandler) UploadTodoAttachments(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}

	todoID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "todo id must be a valid UUID",
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "expected multipart form data",
		})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "no files provided",
		})
		return
	}

	files := make([]services.UploadFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "failed to read uploaded file " + header.Filename,
			})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "failed to read uploaded file " + header.Filename,
			})
			return
		}

		files = append(files, services.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	uploaded, err := h.mediaService.UploadTodoAttachments(
		c.Request.Context(), h.db, uuid.FromStringOrNil(callerStr), todoID, files)
	if err != nil {
		status := http.StatusInternalServerError
		if services.IsValidationError(err) {
			status = http.StatusBadRequest
		} else if err == services.ErrUnauthorized {
			status = http.StatusForbidden
		} else if err == services.ErrNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"uploaded": uploaded,
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"uploaded": uploaded,
		"error":    nil,
	})
}

func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}

	attachmentID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "attachment id must be a valid UUID",
		})
		return
	}

	err = h.mediaService.DeleteAttachment(
		c.Request.Context(), h.db, uuid.FromStringOrNil(callerStr), attachmentID)
	if err != nil {
		handleServiceError(c, "attachments.delete", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": attachmentID})
}

// UploadAvatar stores a new avatar under the "file" field, replacing any
// previous one.
func (h *AttachmentHandler) UploadAvatar(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "expected a single file under the 'file' field",
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "failed to read uploaded file",
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "failed to read uploaded file",
		})
		return
	}

	uploaded, err := h.mediaService.UploadAvatar(c.Request.Context(), h.db,
		uuid.FromStringOrNil(callerStr), services.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	if err != nil {
		handleServiceError(c, "attachments.avatar", err)
		return
	}

	c.JSON(http.StatusCreated, uploaded)
}
