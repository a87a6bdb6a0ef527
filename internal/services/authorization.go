package services

import (
	"errors"

	"todo-starter/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// AuthorizationService is the explicit ownership guard called at the start of
// every data-access operation. It runs in addition to whatever the database
// enforces, so authorization is testable without a live backend.
type AuthorizationService interface {
	AuthorizeOwner(callerID, ownerID uuid.UUID) error
	RequireRole(db *gorm.DB, callerID uuid.UUID, requiredRole string) (*models.Profile, error)
	AuthorizeTodoAccess(db *gorm.DB, callerID, todoID uuid.UUID) (*models.Todo, error)
}

type AuthorizationServiceImpl struct{}

func NewAuthorizationService() *AuthorizationServiceImpl {
	return &AuthorizationServiceImpl{}
}

// AuthorizeOwner rejects any caller whose identity differs from the resource
// owner. Admins get no exemption here; owner-scoped data stays owner-scoped.
func (s *AuthorizationServiceImpl) AuthorizeOwner(callerID, ownerID uuid.UUID) error {
	if callerID != ownerID {
		return ErrUnauthorized
	}
	return nil
}

func (s *AuthorizationServiceImpl) RequireRole(db *gorm.DB, callerID uuid.UUID, requiredRole string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.First(&profile, "id = ?", callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !models.HasRole(profile.Role, requiredRole) {
		return nil, ErrUnauthorized
	}

	return &profile, nil
}

// AuthorizeTodoAccess loads the todo and verifies the caller owns it.
func (s *AuthorizationServiceImpl) AuthorizeTodoAccess(db *gorm.DB, callerID, todoID uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	if err := db.First(&todo, "id = ?", todoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if todo.UserID != callerID {
		return nil, ErrUnauthorized
	}

	return &todo, nil
}
