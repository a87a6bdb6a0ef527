package services

import (
	"math"
	"sort"
	"sync"
	"time"

	"todo-starter/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const topUsersLimit = 5

type UserTodoStats struct {
	TotalTodos          int64   `json:"total_todos"`
	CompletedTodos      int64   `json:"completed_todos"`
	PendingTodos        int64   `json:"pending_todos"`
	OverdueTodos        int64   `json:"overdue_todos"`
	HighPriorityTodos   int64   `json:"high_priority_todos"`
	MediumPriorityTodos int64   `json:"medium_priority_todos"`
	LowPriorityTodos    int64   `json:"low_priority_todos"`
	NoPriorityTodos     int64   `json:"no_priority_todos"`
	CompletionRate      float64 `json:"completion_rate"`
}

type UserStatsEntry struct {
	UserID   uuid.UUID     `json:"user_id"`
	FullName string        `json:"full_name"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Stats    UserTodoStats `json:"stats"`
}

type TopUser struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	TotalTodos     int64     `json:"total_todos"`
	CompletedTodos int64     `json:"completed_todos"`
	CompletionRate float64   `json:"completion_rate"`
}

type PlatformStatsReport struct {
	PlatformStats  UserTodoStats `json:"platformStats"`
	TopUsers       []TopUser     `json:"topUsers"`
	TotalUsers     int           `json:"totalUsers"`
	UsersWithTodos int           `json:"usersWithTodos"`
}

type StatsService interface {
	GetUserTodoStats(db *gorm.DB, userID uuid.UUID) (*UserTodoStats, error)
	GetAllUsersTodoStats(db *gorm.DB) (*PlatformStatsReport, error)
}

type StatsServiceImpl struct {
	// now is swappable so overdue counting is deterministic in tests.
	now func() time.Time
}

func NewStatsService() *StatsServiceImpl {
	return &StatsServiceImpl{now: time.Now}
}

// GetUserTodoStats computes every per-user counter in one grouped pass over
// the user's todos.
func (s *StatsServiceImpl) GetUserTodoStats(db *gorm.DB, userID uuid.UUID) (*UserTodoStats, error) {
	var row struct {
		TotalTodos          int64
		CompletedTodos      int64
		OverdueTodos        int64
		HighPriorityTodos   int64
		MediumPriorityTodos int64
		LowPriorityTodos    int64
	}

	err := db.Model(&models.Todo{}).
		Select(`
			COUNT(*) AS total_todos,
			COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed_todos,
			COALESCE(SUM(CASE WHEN due_date < ? AND NOT completed THEN 1 ELSE 0 END), 0) AS overdue_todos,
			COALESCE(SUM(CASE WHEN priority = 'high' THEN 1 ELSE 0 END), 0) AS high_priority_todos,
			COALESCE(SUM(CASE WHEN priority = 'medium' THEN 1 ELSE 0 END), 0) AS medium_priority_todos,
			COALESCE(SUM(CASE WHEN priority = 'low' THEN 1 ELSE 0 END), 0) AS low_priority_todos`,
			s.now()).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := UserTodoStats{
		TotalTodos:          row.TotalTodos,
		CompletedTodos:      row.CompletedTodos,
		PendingTodos:        row.TotalTodos - row.CompletedTodos,
		OverdueTodos:        row.OverdueTodos,
		HighPriorityTodos:   row.HighPriorityTodos,
		MediumPriorityTodos: row.MediumPriorityTodos,
		LowPriorityTodos:    row.LowPriorityTodos,
		NoPriorityTodos:     row.TotalTodos - row.HighPriorityTodos - row.MediumPriorityTodos - row.LowPriorityTodos,
		CompletionRate:      completionRate(row.CompletedTodos, row.TotalTodos),
	}

	return &stats, nil
}

// GetAllUsersTodoStats fans out one stats computation per user, waits for all
// of them, then folds the results into platform totals and a top-5 ranking.
// The platform completion rate comes from the summed totals, not an average
// of per-user rates.
func (s *StatsServiceImpl) GetAllUsersTodoStats(db *gorm.DB) (*PlatformStatsReport, error) {
	var users []models.Profile
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]UserStatsEntry, len(users))
	errs := make([]error, len(users))

	var wg sync.WaitGroup
	for i, user := range users {
		wg.Add(1)
		go func(i int, user models.Profile) {
			defer wg.Done()

			stats, err := s.GetUserTodoStats(db, user.ID)
			if err != nil {
				errs[i] = err
				return
			}
			entries[i] = UserStatsEntry{
				UserID:   user.ID,
				FullName: user.FullName,
				Email:    user.Email,
				Role:     user.Role,
				Stats:    *stats,
			}
		}(i, user)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var platform UserTodoStats
	usersWithTodos := 0
	for _, entry := range entries {
		platform.TotalTodos += entry.Stats.TotalTodos
		platform.CompletedTodos += entry.Stats.CompletedTodos
		platform.PendingTodos += entry.Stats.PendingTodos
		platform.OverdueTodos += entry.Stats.OverdueTodos
		platform.HighPriorityTodos += entry.Stats.HighPriorityTodos
		platform.MediumPriorityTodos += entry.Stats.MediumPriorityTodos
		platform.LowPriorityTodos += entry.Stats.LowPriorityTodos
		platform.NoPriorityTodos += entry.Stats.NoPriorityTodos
		if entry.Stats.TotalTodos > 0 {
			usersWithTodos++
		}
	}
	platform.CompletionRate = completionRate(platform.CompletedTodos, platform.TotalTodos)

	ranked := make([]UserStatsEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stats.TotalTodos > ranked[j].Stats.TotalTodos
	})
	if len(ranked) > topUsersLimit {
		ranked = ranked[:topUsersLimit]
	}

	topUsers := make([]TopUser, 0, len(ranked))
	for _, entry := range ranked {
		topUsers = append(topUsers, TopUser{
			ID:             entry.UserID,
			FullName:       entry.FullName,
			Email:          entry.Email,
			TotalTodos:     entry.Stats.TotalTodos,
			CompletedTodos: entry.Stats.CompletedTodos,
			CompletionRate: entry.Stats.CompletionRate,
		})
	}

	return &PlatformStatsReport{
		PlatformStats:  platform,
		TopUsers:       topUsers,
		TotalUsers:     len(users),
		UsersWithTodos: usersWithTodos,
	}, nil
}

// completionRate is completed/total as a percentage rounded to 2 decimals,
// 0 when there are no todos.
func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}
