package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"todo-starter/backend/internal/media"
	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/storage"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type UploadedAttachment struct {
	models.Media
	PublicURL string `json:"publicUrl"`
}

type MediaService interface {
	UploadTodoAttachments(ctx context.Context, db *gorm.DB, callerID, todoID uuid.UUID, files []UploadFile) ([]UploadedAttachment, error)
	UploadAvatar(ctx context.Context, db *gorm.DB, callerID uuid.UUID, file UploadFile) (*UploadedAttachment, error)
	DeleteAttachment(ctx context.Context, db *gorm.DB, callerID, attachmentID uuid.UUID) error
	AvatarURL(db *gorm.DB, userID uuid.UUID) (string, error)
}

// PageInvalidator clears an owner's cached todo pages. Attachments are
// preloaded into pages, so attachment mutations must invalidate them too.
type PageInvalidator interface {
	InvalidateOwner(ownerID uuid.UUID)
}

type MediaServiceImpl struct {
	store       storage.ObjectStorage
	authz       AuthorizationService
	invalidator PageInvalidator
}

func NewMediaService(store storage.ObjectStorage, authz AuthorizationService) *MediaServiceImpl {
	return &MediaServiceImpl{store: store, authz: authz}
}

// SetPageInvalidator is called once during wiring; the cached todo service is
// built after the media service, so this cannot live in the constructor.
func (s *MediaServiceImpl) SetPageInvalidator(inv PageInvalidator) {
	s.invalidator = inv
}

func (s *MediaServiceImpl) invalidatePages(ownerID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateOwner(ownerID)
	}
}

// UploadTodoAttachments runs the upload pipeline over the batch in strict
// input order: validate type, compress oversized images, derive a path,
// upload, record metadata. The first failing file aborts the rest of the
// batch; files already recorded are returned and never rolled back.
func (s *MediaServiceImpl) UploadTodoAttachments(ctx context.Context, db *gorm.DB, callerID, todoID uuid.UUID, files []UploadFile) ([]UploadedAttachment, error) {
	todo, err := s.authz.AuthorizeTodoAccess(db, callerID, todoID)
	if err != nil {
		return nil, err
	}

	category, err := media.CategoryFor(models.MediaTypeTodoAttachment)
	if err != nil {
		return nil, err
	}

	results := make([]UploadedAttachment, 0, len(files))

	for i, file := range files {
		attachment, err := s.uploadOne(ctx, db, category, models.MediaTypeTodoAttachment, callerID, &todo.ID, file)
		if err != nil {
			if len(results) > 0 {
				s.invalidatePages(todo.UserID)
			}
			return results, fmt.Errorf("file %d (%s): %w", i+1, file.Name, err)
		}
		results = append(results, *attachment)
	}

	s.invalidatePages(todo.UserID)

	return results, nil
}

// uploadOne is steps 1-5 of the pipeline for a single file.
func (s *MediaServiceImpl) uploadOne(ctx context.Context, db *gorm.DB, category media.CategoryConfig, mediaType string, ownerID uuid.UUID, todoID *uuid.UUID, file UploadFile) (*UploadedAttachment, error) {
	if !category.AllowsType(file.ContentType) {
		return nil, NewValidationError(category.ValidateFile(file.ContentType, 0))
	}

	data := file.Data
	contentType := file.ContentType
	size := int64(len(data))

	if media.ShouldCompress(contentType, size) {
		maxBytes := category.MaxSize
		if media.CompressThreshold < maxBytes {
			maxBytes = media.CompressThreshold
		}

		compressed, compressedType, err := media.NewCompressor(maxBytes).Compress(data, contentType)
		if err != nil {
			// Fall back to the original file, but it must then pass the
			// category's hard size limit on its own.
			log.Printf("[media] compression failed for %s: %v", file.Name, err)
			if msg := category.ValidateFile(contentType, size); msg != "" {
				return nil, NewValidationError(msg)
			}
		} else {
			data = compressed
			contentType = compressedType
			size = int64(len(data))
			if msg := category.ValidateFile(contentType, size); msg != "" {
				return nil, NewValidationError(msg)
			}
		}
	} else if msg := category.ValidateFile(contentType, size); msg != "" {
		return nil, NewValidationError(msg)
	}

	filename := media.GenerateUniqueFilename(file.Name)
	var path string
	if todoID != nil {
		path = media.TodoAttachmentPath(ownerID.String(), todoID.String(), filename)
	} else {
		path = media.AvatarPath(ownerID.String(), filename)
	}

	if err := s.store.Upload(ctx, category.Bucket, path, bytes.NewReader(data), size, contentType); err != nil {
		return nil, err
	}

	record := models.Media{
		ID:        uuid.Must(uuid.NewV4()),
		OwnerID:   ownerID,
		TodoID:    todoID,
		FilePath:  path,
		MediaType: mediaType,
		MimeType:  contentType,
		Size:      size,
	}

	// A failure here leaves the uploaded object behind; there is deliberately
	// no compensating delete (see DESIGN.md).
	if err := db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	return &UploadedAttachment{
		Media:     record,
		PublicURL: s.store.PublicURL(category.Bucket, path),
	}, nil
}

// UploadAvatar stores a new avatar and removes the previous one, object and
// record both, best effort on the object.
func (s *MediaServiceImpl) UploadAvatar(ctx context.Context, db *gorm.DB, callerID uuid.UUID, file UploadFile) (*UploadedAttachment, error) {
	category, err := media.CategoryFor(models.MediaTypeAvatar)
	if err != nil {
		return nil, err
	}

	var previous models.Media
	hasPrevious := db.Where("owner_id = ? AND media_type = ?", callerID, models.MediaTypeAvatar).
		First(&previous).Error == nil

	uploaded, err := s.uploadOne(ctx, db, category, models.MediaTypeAvatar, callerID, nil, file)
	if err != nil {
		return nil, err
	}

	if hasPrevious {
		bucket, path := media.BucketForPath(previous.FilePath, previous.MediaType)
		if err := s.store.Remove(ctx, bucket, path); err != nil {
			log.Printf("[media] failed to remove previous avatar object: %v", err)
		}
		if err := db.Delete(&previous).Error; err != nil {
			log.Printf("[media] failed to remove previous avatar record: %v", err)
		}
	}

	return uploaded, nil
}

// DeleteAttachment verifies ownership through the owning todo, removes the
// stored object best-effort, then deletes the record. Storage failure never
// blocks the metadata delete.
func (s *MediaServiceImpl) DeleteAttachment(ctx context.Context, db *gorm.DB, callerID, attachmentID uuid.UUID) error {
	var attachment models.Media
	err := db.Where("id = ? AND media_type = ?", attachmentID, models.MediaTypeTodoAttachment).
		First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if attachment.TodoID == nil {
		return ErrNotFound
	}
	if _, err := s.authz.AuthorizeTodoAccess(db, callerID, *attachment.TodoID); err != nil {
		return err
	}

	bucket, path := media.BucketForPath(attachment.FilePath, attachment.MediaType)
	if err := s.store.Remove(ctx, bucket, path); err != nil {
		log.Printf("[media] failed to delete attachment object %s/%s: %v", bucket, path, err)
	}

	if err := db.Delete(&attachment).Error; err != nil {
		return err
	}
	s.invalidatePages(attachment.OwnerID)

	return nil
}

func (s *MediaServiceImpl) AvatarURL(db *gorm.DB, userID uuid.UUID) (string, error) {
	var avatar models.Media
	err := db.Where("owner_id = ? AND media_type = ?", userID, models.MediaTypeAvatar).
		First(&avatar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	bucket, path := media.BucketForPath(avatar.FilePath, avatar.MediaType)
	return s.store.PublicURL(bucket, path), nil
}
