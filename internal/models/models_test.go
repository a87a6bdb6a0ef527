package models_test

import (
	"testing"
	"time"

	"todo-starter/backend/internal/models"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		role     string
		required string
		want     bool
	}{
		{models.RoleUser, models.RoleUser, true},
		{models.RoleUser, models.RoleAdmin, false},
		{models.RoleAdmin, models.RoleUser, true},
		{models.RoleAdmin, models.RoleAdmin, true},
		{"", models.RoleUser, false},
		{"superuser", models.RoleUser, false},
	}

	for _, tt := range tests {
		if got := models.HasRole(tt.role, tt.required); got != tt.want {
			t.Errorf("HasRole(%q, %q) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}
}

func TestProfile_IsAdmin(t *testing.T) {
	admin := models.Profile{Role: models.RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("Expected admin profile to report IsAdmin")
	}

	user := models.Profile{Role: models.RoleUser}
	if user.IsAdmin() {
		t.Error("Expected user profile not to report IsAdmin")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		if !models.ValidPriority(p) {
			t.Errorf("Expected %q to be a valid priority", p)
		}
	}

	for _, p := range []string{"", "urgent", "HIGH"} {
		if models.ValidPriority(p) {
			t.Errorf("Expected %q to be rejected", p)
		}
	}
}

func TestTodo_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		todo models.Todo
		want bool
	}{
		{"past due and open", models.Todo{DueDate: &past}, true},
		{"past due but completed", models.Todo{DueDate: &past, Completed: true}, false},
		{"due in the future", models.Todo{DueDate: &future}, false},
		{"no due date", models.Todo{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.todo.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}
