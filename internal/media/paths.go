package media

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/storage"
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateUniqueFilename builds "<ms-epoch>-<13 random base36 chars>.<ext>",
// keeping the original file's extension.
func GenerateUniqueFilename(originalName string) string {
	suffix := make([]byte, 13)
	for i := range suffix {
		suffix[i] = base36Chars[rand.Intn(len(base36Chars))]
	}

	ext := originalName
	if idx := strings.LastIndex(originalName, "."); idx >= 0 {
		ext = originalName[idx+1:]
	}

	return fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), string(suffix), ext)
}

// AvatarPath and TodoAttachmentPath derive the object path stored in the media
// record. Paths never include the bucket name.
func AvatarPath(ownerID, filename string) string {
	return fmt.Sprintf("%s/%s", ownerID, filename)
}

func TodoAttachmentPath(ownerID, todoID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", ownerID, todoID, filename)
}

// BucketForPath resolves which bucket a stored file path belongs to, using the
// media type when available and the path shape as a fallback.
func BucketForPath(filePath, mediaType string) (bucket, path string) {
	segments := strings.Split(filePath, "/")

	if segments[0] == storage.BucketAvatars || segments[0] == storage.BucketTodoAttachments {
		return segments[0], strings.Join(segments[1:], "/")
	}

	if mediaType == models.MediaTypeAvatar {
		return storage.BucketAvatars, filePath
	}

	if mediaType == models.MediaTypeTodoAttachment || len(segments) == 3 {
		return storage.BucketTodoAttachments, filePath
	}

	return storage.BucketAvatars, filePath
}
