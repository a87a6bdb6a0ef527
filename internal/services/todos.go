package services

import (
	"errors"
	"time"

	"todo-starter/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TodoService interface {
	UpsertTodo(db *gorm.DB, callerID uuid.UUID, input UpsertTodoInput) (*models.Todo, error)
	GetTodo(db *gorm.DB, callerID, todoID uuid.UUID) (*models.Todo, error)
	DeleteTodo(db *gorm.DB, callerID, todoID uuid.UUID) error
	ListTodos(db *gorm.DB, callerID, ownerID uuid.UUID, filters TodoFilters) (*TodoPage, error)
}

type UpsertTodoInput struct {
	ID          *uuid.UUID `json:"id"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

type TodoServiceImpl struct {
	authz AuthorizationService
}

func NewTodoService(authz AuthorizationService) *TodoServiceImpl {
	return &TodoServiceImpl{authz: authz}
}

// UpsertTodo creates a todo owned by the caller, or updates one the caller
// already owns. The owning user can never be reassigned.
func (s *TodoServiceImpl) UpsertTodo(db *gorm.DB, callerID uuid.UUID, input UpsertTodoInput) (*models.Todo, error) {
	if input.Priority != nil && !models.ValidPriority(*input.Priority) {
		return nil, NewValidationError("priority must be one of low, medium, high")
	}

	if input.ID != nil {
		existing, err := s.authz.AuthorizeTodoAccess(db, callerID, *input.ID)
		if err != nil {
			return nil, err
		}

		existing.Title = input.Title
		existing.Description = input.Description
		existing.Completed = input.Completed
		existing.Priority = input.Priority
		existing.DueDate = input.DueDate

		if err := db.Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	todo := models.Todo{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      callerID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}

	if err := db.Create(&todo).Error; err != nil {
		return nil, err
	}

	return &todo, nil
}

func (s *TodoServiceImpl) GetTodo(db *gorm.DB, callerID, todoID uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := db.Preload("Attachments").First(&todo, "id = ?", todoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.authz.AuthorizeOwner(callerID, todo.UserID); err != nil {
		return nil, err
	}

	return &todo, nil
}

// DeleteTodo hard-deletes the todo and its attachment records. Stored objects
// are cleaned up by the media service before this is called.
func (s *TodoServiceImpl) DeleteTodo(db *gorm.DB, callerID, todoID uuid.UUID) error {
	todo, err := s.authz.AuthorizeTodoAccess(db, callerID, todoID)
	if err != nil {
		return err
	}

	if err := db.Where("todo_id = ?", todo.ID).Delete(&models.Media{}).Error; err != nil {
		return err
	}

	return db.Delete(todo).Error
}
