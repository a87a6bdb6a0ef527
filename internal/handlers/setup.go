package handlers

import (
	"encoding/json"
	"net/http"

	"todo-starter/backend/internal/cache"

	"github.com/gin-gonic/gin"
)

// SetupHandler tracks per-user onboarding checklist state in a key-value
// store so it survives restarts without a dedicated table.
type SetupHandler struct {
	store cache.KVStore
}

func NewSetupHandler(store cache.KVStore) *SetupHandler {
	return &SetupHandler{store: store}
}

type SetupState struct {
	CompletedSteps []string `json:"completed_steps"`
	Dismissed      bool     `json:"dismissed"`
}

func setupKey(userID string) string {
	return "setup:" + userID
}

func (h *SetupHandler) loadState(c *gin.Context, userID string) (*SetupState, error) {
	raw, found, err := h.store.GetValue(c.Request.Context(), setupKey(userID))
	if err != nil {
		return nil, err
	}
	state := &SetupState{CompletedSteps: []string{}}
	if found {
		if err := json.Unmarshal([]byte(raw), state); err != nil {
			// A corrupt entry resets to the initial state.
			return &SetupState{CompletedSteps: []string{}}, nil
		}
	}
	return state, nil
}

func (h *SetupHandler) saveState(c *gin.Context, userID string, state *SetupState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return h.store.SetValue(c.Request.Context(), setupKey(userID), string(raw))
}

// GetChecklist returns the caller's checklist progress.
func (h *SetupHandler) GetChecklist(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	state, err := h.loadState(c, userID)
	if err != nil {
		handleServiceError(c, "setup.get", err)
		return
	}

	c.JSON(http.StatusOK, state)
}

type CompleteStepRequest struct {
	Step string `json:"step" binding:"required,min=1,max=64"`
}

// CompleteStep marks a checklist step as done. Completing the same step twice
// is a no-op.
func (h *SetupHandler) CompleteStep(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req CompleteStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	state, err := h.loadState(c, userID)
	if err != nil {
		handleServiceError(c, "setup.complete", err)
		return
	}

	for _, step := range state.CompletedSteps {
		if step == req.Step {
			c.JSON(http.StatusOK, state)
			return
		}
	}
	state.CompletedSteps = append(state.CompletedSteps, req.Step)

	if err := h.saveState(c, userID, state); err != nil {
		handleServiceError(c, "setup.complete", err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Dismiss hides the checklist for the caller.
func (h *SetupHandler) Dismiss(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	state, err := h.loadState(c, userID)
	if err != nil {
		handleServiceError(c, "setup.dismiss", err)
		return
	}

	state.Dismissed = true
	if err := h.saveState(c, userID, state); err != nil {
		handleServiceError(c, "setup.dismiss", err)
		return
	}

	c.JSON(http.StatusOK, state)
}
