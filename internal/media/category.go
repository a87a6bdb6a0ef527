package media

import (
	"fmt"

	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/storage"
)

// CategoryConfig is the authoritative per-category upload policy: which MIME
// types a bucket accepts and the hard byte ceiling for a single file.
type CategoryConfig struct {
	Bucket       string
	AllowedTypes []string
	MaxSize      int64
}

var categories = map[string]CategoryConfig{
	models.MediaTypeAvatar: {
		Bucket:       storage.BucketAvatars,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
		MaxSize:      2 * 1024 * 1024,
	},
	models.MediaTypeTodoAttachment: {
		Bucket:       storage.BucketTodoAttachments,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif", "application/pdf"},
		MaxSize:      5 * 1024 * 1024,
	},
}

func CategoryFor(mediaType string) (CategoryConfig, error) {
	cfg, ok := categories[mediaType]
	if !ok {
		return CategoryConfig{}, fmt.Errorf("unknown media type %q", mediaType)
	}
	return cfg, nil
}

func (c CategoryConfig) AllowsType(contentType string) bool {
	for _, t := range c.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// ValidateFile checks declared content type and byte size against the category
// policy. It returns a user-facing message, or "" when the file passes.
func (c CategoryConfig) ValidateFile(contentType string, size int64) string {
	if !c.AllowsType(contentType) {
		return fmt.Sprintf("File type %s is not allowed. Allowed types: %s",
			contentType, joinTypes(c.AllowedTypes))
	}

	if size > c.MaxSize {
		return fmt.Sprintf("File size %dMB exceeds maximum size of %dMB",
			roundMB(size), roundMB(c.MaxSize))
	}

	return ""
}

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

func roundMB(size int64) int64 {
	const mb = 1024 * 1024
	return (size + mb/2) / mb
}
