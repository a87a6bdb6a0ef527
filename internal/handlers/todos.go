package handlers

import (
	"net/http"

	"todo-starter/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TodoHandler struct {
	db          *gorm.DB
	todoService services.TodoService
}

func NewTodoHandler(db *gorm.DB, todoService services.TodoService) *TodoHandler {
	return &TodoHandler{db: db, todoService: todoService}
}

// ListTodos returns one filtered, sorted page of the caller's todos together
// with the total match count. A user_id query param other than the caller's
// own id is rejected.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}
	caller := uuid.FromStringOrNil(callerStr)

	ownerStr := c.DefaultQuery("user_id", callerStr)
	owner, err := uuid.FromString(ownerStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "user_id must be a valid UUID",
		})
		return
	}

	var filters services.TodoFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	page, err := h.todoService.ListTodos(h.db, caller, owner, filters)
	if err != nil {
		if err == services.ErrUnauthorized {
			c.JSON(http.StatusForbidden, gin.H{
				"data":       nil,
				"error":      "Unauthorized access",
				"total":      0,
				"totalPages": 0,
			})
			return
		}
		handleServiceError(c, "todos.list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        page.Data,
		"error":       nil,
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

func (h *TodoHandler) GetTodo(c *gin.Context) {
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

	todo, err := h.todoService.GetTodo(h.db, uuid.FromStringOrNil(callerStr), todoID)
	if err != nil {
		handleServiceError(c, "todos.get", err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

// UpsertTodo creates a todo when no id is given, otherwise updates the
// caller's existing todo.
func (h *TodoHandler) UpsertTodo(c *gin.Context) {
	callerStr, ok := callerID(c)
	if !ok {
		return
	}

	var input services.UpsertTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	created := input.ID == nil

	todo, err := h.todoService.UpsertTodo(h.db, uuid.FromStringOrNil(callerStr), input)
	if err != nil {
		handleServiceError(c, "todos.upsert", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, todo)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
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

	if err := h.todoService.DeleteTodo(h.db, uuid.FromStringOrNil(callerStr), todoID); err != nil {
		handleServiceError(c, "todos.delete", err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
