package services_test

import (
	"testing"
	"time"

	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type StatsTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service services.StatsService
}

func (suite *StatsTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// The per-user fan-out issues concurrent queries; a pooled :memory:
	// database would hand each of them an empty connection.
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(&models.Profile{}, &models.Todo{}, &models.Media{}))

	suite.db = db
	suite.service = services.NewStatsService()
}

func (suite *StatsTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("DELETE FROM todos").Error)
	suite.Require().NoError(suite.db.Exec("DELETE FROM profiles").Error)
}

func (suite *StatsTestSuite) seedUser(name string, createdAt time.Time) models.Profile {
	user := models.Profile{
		ID:        uuid.Must(uuid.NewV4()),
		FullName:  name,
		Email:     name + "@example.com",
		Password:  "hashed",
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	suite.Require().NoError(suite.db.Create(&user).Error)
	return user
}

func (suite *StatsTestSuite) seedTodoFor(userID uuid.UUID, completed bool, priority *string, dueDate *time.Time) {
	todo := models.Todo{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		Title:     "todo",
		Completed: completed,
		Priority:  priority,
		DueDate:   dueDate,
	}
	suite.Require().NoError(suite.db.Create(&todo).Error)
}

func (suite *StatsTestSuite) TestUserStatsCounters() {
	user := suite.seedUser("alice", time.Now())
	high := models.PriorityHigh
	low := models.PriorityLow
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Now().Add(24 * time.Hour)

	suite.seedTodoFor(user.ID, true, &high, nil)
	suite.seedTodoFor(user.ID, true, nil, &past)
	suite.seedTodoFor(user.ID, false, &low, &past)
	suite.seedTodoFor(user.ID, false, nil, &future)

	stats, err := suite.service.GetUserTodoStats(suite.db, user.ID)
	suite.Require().NoError(err)

	suite.Equal(int64(4), stats.TotalTodos)
	suite.Equal(int64(2), stats.CompletedTodos)
	suite.Equal(int64(2), stats.PendingTodos)
	suite.Equal(int64(1), stats.OverdueTodos)
	suite.Equal(int64(1), stats.HighPriorityTodos)
	suite.Equal(int64(0), stats.MediumPriorityTodos)
	suite.Equal(int64(1), stats.LowPriorityTodos)
	suite.Equal(int64(2), stats.NoPriorityTodos)
	suite.Equal(50.0, stats.CompletionRate)
}

func (suite *StatsTestSuite) TestCompletionRateRounding() {
	user := suite.seedUser("bob", time.Now())
	suite.seedTodoFor(user.ID, true, nil, nil)
	suite.seedTodoFor(user.ID, true, nil, nil)
	suite.seedTodoFor(user.ID, false, nil, nil)

	stats, err := suite.service.GetUserTodoStats(suite.db, user.ID)
	suite.Require().NoError(err)

	suite.Equal(66.67, stats.CompletionRate)
}

func (suite *StatsTestSuite) TestUserWithNoTodos() {
	user := suite.seedUser("carol", time.Now())

	stats, err := suite.service.GetUserTodoStats(suite.db, user.ID)
	suite.Require().NoError(err)

	suite.Equal(int64(0), stats.TotalTodos)
	suite.Equal(0.0, stats.CompletionRate)
}

func (suite *StatsTestSuite) TestPlatformFold() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alice := suite.seedUser("alice", base)
	bob := suite.seedUser("bob", base.Add(time.Hour))
	suite.seedUser("idle", base.Add(2*time.Hour))

	suite.seedTodoFor(alice.ID, true, nil, nil)
	suite.seedTodoFor(alice.ID, false, nil, nil)
	suite.seedTodoFor(bob.ID, true, nil, nil)

	report, err := suite.service.GetAllUsersTodoStats(suite.db)
	suite.Require().NoError(err)

	suite.Equal(3, report.TotalUsers)
	suite.Equal(2, report.UsersWithTodos)
	suite.Equal(int64(3), report.PlatformStats.TotalTodos)
	suite.Equal(int64(2), report.PlatformStats.CompletedTodos)
	// Rate comes from the summed counters, not an average of user rates.
	suite.Equal(66.67, report.PlatformStats.CompletionRate)
}

func (suite *StatsTestSuite) TestTopUsersRanking() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	users := make([]models.Profile, 0, 7)
	for i := 0; i < 7; i++ {
		users = append(users, suite.seedUser(string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour)))
	}

	// users[6] gets the most todos, descending from there.
	for i, user := range users {
		for j := 0; j < i; j++ {
			suite.seedTodoFor(user.ID, false, nil, nil)
		}
	}

	report, err := suite.service.GetAllUsersTodoStats(suite.db)
	suite.Require().NoError(err)

	suite.Require().Len(report.TopUsers, 5)
	suite.Equal(users[6].ID, report.TopUsers[0].ID)
	suite.Equal(int64(6), report.TopUsers[0].TotalTodos)
	suite.Equal(users[2].ID, report.TopUsers[4].ID)
	suite.Equal(int64(2), report.TopUsers[4].TotalTodos)
}

func (suite *StatsTestSuite) TestEmptyPlatform() {
	report, err := suite.service.GetAllUsersTodoStats(suite.db)
	suite.Require().NoError(err)

	suite.Equal(0, report.TotalUsers)
	suite.Equal(0, report.UsersWithTodos)
	suite.Empty(report.TopUsers)
	suite.Equal(0.0, report.PlatformStats.CompletionRate)
}

func TestStatsTestSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}
