package services_test

import (
	"testing"
	"time"

	"todo-starter/backend/internal/config"
	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type AuthTestSuite struct {
	suite.Suite
	db       *gorm.DB
	cfg      config.AuthConfig
	auth     services.AuthService
	register services.RegisterService
}

func (suite *AuthTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(&models.Profile{}, &models.Token{}))
	suite.db = db

	suite.cfg = config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		BCryptCost:      bcrypt.MinCost,
	}
	suite.auth = services.NewAuthService(suite.cfg)
	suite.register = services.NewRegisterService(suite.cfg)
}

func (suite *AuthTestSuite) registerUser(email string) *models.Profile {
	profile, err := suite.register.RegisterUser(suite.db, services.RegistrationRequest{
		FullName: "Test User",
		Email:    email,
		Password: "password123",
	})
	suite.Require().NoError(err)
	return profile
}

func (suite *AuthTestSuite) TestRegisterNormalizesEmail() {
	profile := suite.registerUser("  Alice@Example.COM ")
	suite.Equal("alice@example.com", profile.Email)
	suite.Equal(models.RoleUser, profile.Role)
	suite.NotEqual("password123", profile.Password)
}

func (suite *AuthTestSuite) TestRegisterDuplicateEmail() {
	suite.registerUser("alice@example.com")

	_, err := suite.register.RegisterUser(suite.db, services.RegistrationRequest{
		FullName: "Other",
		Email:    "ALICE@example.com",
		Password: "password456",
	})
	suite.Error(err)
}

func (suite *AuthTestSuite) TestLoginWithCorrectPassword() {
	registered := suite.registerUser("alice@example.com")

	profile, err := suite.auth.LoginUser(suite.db, "alice@example.com", "password123")
	suite.Require().NoError(err)
	suite.Equal(registered.ID, profile.ID)
}

func (suite *AuthTestSuite) TestLoginWithWrongPassword() {
	suite.registerUser("alice@example.com")

	_, err := suite.auth.LoginUser(suite.db, "alice@example.com", "wrong-password")
	suite.Error(err)
}

func (suite *AuthTestSuite) TestGeneratedTokenCarriesClaims() {
	profile := suite.registerUser("alice@example.com")

	accessToken, refreshToken, err := suite.auth.GenerateToken(suite.db, profile.ID)
	suite.Require().NoError(err)
	suite.NotEmpty(refreshToken)

	parsed, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(suite.cfg.JWTSecret), nil
	})
	suite.Require().NoError(err)
	suite.True(parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	suite.Require().True(ok)
	suite.Equal(profile.ID.String(), claims["user_id"])
	suite.Equal(models.RoleUser, claims["role"])
}

func (suite *AuthTestSuite) TestRefreshRotatesToken() {
	profile := suite.registerUser("alice@example.com")

	_, refreshToken, err := suite.auth.GenerateToken(suite.db, profile.ID)
	suite.Require().NoError(err)

	access, newRefresh, expiresIn, err := suite.auth.RefreshToken(suite.db, refreshToken)
	suite.Require().NoError(err)
	suite.NotEmpty(access)
	suite.NotEqual(refreshToken, newRefresh)
	suite.Equal(int64(900), expiresIn)

	// The old refresh token is spent.
	_, _, _, err = suite.auth.RefreshToken(suite.db, refreshToken)
	suite.Error(err)
}

func (suite *AuthTestSuite) TestRevokeToken() {
	profile := suite.registerUser("alice@example.com")

	_, refreshToken, err := suite.auth.GenerateToken(suite.db, profile.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.auth.RevokeToken(suite.db, refreshToken))

	_, _, _, err = suite.auth.RefreshToken(suite.db, refreshToken)
	suite.Error(err)

	suite.Error(suite.auth.RevokeToken(suite.db, refreshToken))
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
