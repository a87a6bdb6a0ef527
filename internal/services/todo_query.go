package services

import (
	"math"
	"strings"
	"sync"

	"todo-starter/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortDueDate  = "due_date"
	SortPriority = "priority"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// TodoFilters is the typed query specification for a todo list page. It is an
// ephemeral value object reconstructed per request, never persisted.
type TodoFilters struct {
	Search    string `form:"search"`
	Completed *bool  `form:"completed"`
	Priority  string `form:"priority"`
	SortBy    string `form:"sortBy"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type TodoPage struct {
	Data        []models.Todo `json:"data"`
	Total       int64         `json:"total"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

func (f TodoFilters) normalized() TodoFilters {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.SortBy == "" {
		f.SortBy = SortNewest
	}
	return f
}

// applyTodoFilters composes the ownership predicate with the optional search,
// completion and priority predicates. The data query and the count query both
// go through here so totals stay consistent with the returned page.
func applyTodoFilters(q *gorm.DB, ownerID uuid.UUID, f TodoFilters) *gorm.DB {
	q = q.Where("user_id = ?", ownerID)

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if f.Completed != nil {
		q = q.Where("completed = ?", *f.Completed)
	}

	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}

	return q
}

// todoOrderClause maps a sort mode to portable SQL. Null due dates and null
// priorities sort last; ties fall back to newest-first.
func todoOrderClause(sortBy string) string {
	switch sortBy {
	case SortOldest:
		return "created_at ASC"
	case SortDueDate:
		return "CASE WHEN due_date IS NULL THEN 1 ELSE 0 END ASC, due_date ASC, created_at DESC"
	case SortPriority:
		return "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// ListTodos returns one page of the owner's todos plus the total match count.
// A caller requesting another user's todos is rejected before any data
// predicate runs. The page query and the count query run concurrently.
func (s *TodoServiceImpl) ListTodos(db *gorm.DB, callerID, ownerID uuid.UUID, filters TodoFilters) (*TodoPage, error) {
	if err := s.authz.AuthorizeOwner(callerID, ownerID); err != nil {
		return nil, err
	}

	if filters.Priority != "" && !models.ValidPriority(filters.Priority) {
		return nil, NewValidationError("priority must be one of low, medium, high")
	}

	f := filters.normalized()

	var (
		todos    []models.Todo
		total    int64
		dataErr  error
		countErr error
		wg       sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		q := applyTodoFilters(db.Model(&models.Todo{}), ownerID, f)
		dataErr = q.Order(todoOrderClause(f.SortBy)).
			Offset((f.Page - 1) * f.Limit).
			Limit(f.Limit).
			Preload("Attachments").
			Find(&todos).Error
	}()
	go func() {
		defer wg.Done()
		countErr = applyTodoFilters(db.Model(&models.Todo{}), ownerID, f).Count(&total).Error
	}()
	wg.Wait()

	if dataErr != nil {
		return nil, dataErr
	}
	if countErr != nil {
		return nil, countErr
	}

	return &TodoPage{
		Data:        todos,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(f.Limit))),
		CurrentPage: f.Page,
	}, nil
}
