package services

import (
	"fmt"
	"time"

	"todo-starter/backend/internal/cache"
	"todo-starter/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const todoPageTTL = 5 * time.Minute

// CachedTodoService decorates TodoService with a Redis page cache. Every
// mutation invalidates the owner's cached pages so listings never go stale
// past a write.
type CachedTodoService struct {
	todoService TodoService
	cache       *cache.RedisCache
}

func NewCachedTodoService(todoService TodoService, cacheInstance *cache.RedisCache) *CachedTodoService {
	return &CachedTodoService{
		todoService: todoService,
		cache:       cacheInstance,
	}
}

func todoPageKey(ownerID uuid.UUID, f TodoFilters) string {
	completed := "any"
	if f.Completed != nil {
		completed = fmt.Sprintf("%t", *f.Completed)
	}
	return fmt.Sprintf("todos:%s:%s:%s:%s:%s:%d:%d",
		ownerID, f.Search, completed, f.Priority, f.SortBy, f.Page, f.Limit)
}

func (s *CachedTodoService) ownerPattern(ownerID uuid.UUID) string {
	return fmt.Sprintf("todos:%s:*", ownerID)
}

func (s *CachedTodoService) ListTodos(db *gorm.DB, callerID, ownerID uuid.UUID, filters TodoFilters) (*TodoPage, error) {
	// Authorization runs in the inner service; only cache after it passed.
	key := todoPageKey(ownerID, filters)

	if callerID == ownerID {
		var cached TodoPage
		if err := s.cache.Get(key, &cached); err == nil {
			return &cached, nil
		}
	}

	page, err := s.todoService.ListTodos(db, callerID, ownerID, filters)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, page, todoPageTTL)

	return page, nil
}

func (s *CachedTodoService) UpsertTodo(db *gorm.DB, callerID uuid.UUID, input UpsertTodoInput) (*models.Todo, error) {
	todo, err := s.todoService.UpsertTodo(db, callerID, input)
	if err != nil {
		return nil, err
	}

	s.cache.DeletePattern(s.ownerPattern(callerID))

	return todo, nil
}

func (s *CachedTodoService) GetTodo(db *gorm.DB, callerID, todoID uuid.UUID) (*models.Todo, error) {
	return s.todoService.GetTodo(db, callerID, todoID)
}

func (s *CachedTodoService) DeleteTodo(db *gorm.DB, callerID, todoID uuid.UUID) error {
	if err := s.todoService.DeleteTodo(db, callerID, todoID); err != nil {
		return err
	}

	s.cache.DeletePattern(s.ownerPattern(callerID))

	return nil
}

// InvalidateOwner clears an owner's cached pages. The media service calls
// this after attachment mutations since attachments ride along with pages.
func (s *CachedTodoService) InvalidateOwner(ownerID uuid.UUID) {
	s.cache.DeletePattern(s.ownerPattern(ownerID))
}
