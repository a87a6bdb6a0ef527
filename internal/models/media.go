package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	MediaTypeAvatar         = "avatar"
	MediaTypeTodoAttachment = "todo_attachment"
)

// Media is a stored file owned by a user: either an avatar or a todo attachment.
// FilePath is the object path inside the media type's bucket, without the bucket
// prefix ("<ownerId>/<filename>" for avatars, "<ownerId>/<todoId>/<filename>" for
// todo attachments).
type Media struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID   uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	TodoID    *uuid.UUID `json:"todo_id" gorm:"type:uuid;index"`
	FilePath  string     `json:"file_path" gorm:"not null"`
	MediaType string     `json:"media_type" gorm:"not null"`
	MimeType  string     `json:"mime_type"`
	Size      int64      `json:"size"`
	CreatedAt time.Time  `json:"created_at"`
}
