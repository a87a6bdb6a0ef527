package services_test

import (
	"context"
	"testing"
	"time"

	"todo-starter/backend/internal/config"
	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type OTPTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mr      *miniredis.Miniredis
	service services.OTPService
	profile models.Profile
}

func (suite *OTPTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(&models.Profile{}))
	suite.db = db

	suite.profile = models.Profile{
		ID:       uuid.Must(uuid.NewV4()),
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "hashed",
		Role:     models.RoleUser,
		IsActive: true,
	}
	suite.Require().NoError(db.Create(&suite.profile).Error)

	suite.mr = miniredis.RunT(suite.T())
	client := redis.NewClient(&redis.Options{Addr: suite.mr.Addr()})

	suite.service = services.NewOTPService(client, config.AuthConfig{
		OTPTTL:         5 * time.Minute,
		OTPMaxAttempts: 3,
	})
}

func (suite *OTPTestSuite) TestRequestAndVerify() {
	ctx := context.Background()

	profile, code, err := suite.service.RequestCode(ctx, suite.db, "alice@example.com")
	suite.Require().NoError(err)
	suite.Equal(suite.profile.ID, profile.ID)
	suite.Len(code, 6)

	verified, err := suite.service.VerifyCode(ctx, suite.db, "alice@example.com", code)
	suite.Require().NoError(err)
	suite.Equal(suite.profile.ID, verified.ID)
}

func (suite *OTPTestSuite) TestRequestForUnknownEmail() {
	_, _, err := suite.service.RequestCode(context.Background(), suite.db, "nobody@example.com")
	suite.ErrorIs(err, services.ErrNotFound)
}

func (suite *OTPTestSuite) TestEmailNormalized() {
	ctx := context.Background()

	_, code, err := suite.service.RequestCode(ctx, suite.db, "  ALICE@example.com ")
	suite.Require().NoError(err)

	_, err = suite.service.VerifyCode(ctx, suite.db, "Alice@Example.COM", code)
	suite.NoError(err)
}

func (suite *OTPTestSuite) TestCodeIsSingleUse() {
	ctx := context.Background()

	_, code, err := suite.service.RequestCode(ctx, suite.db, "alice@example.com")
	suite.Require().NoError(err)

	_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", code)
	suite.Require().NoError(err)

	_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", code)
	suite.ErrorIs(err, services.ErrOTPInvalid)
}

func (suite *OTPTestSuite) TestWrongCodeRejected() {
	ctx := context.Background()

	_, code, err := suite.service.RequestCode(ctx, suite.db, "alice@example.com")
	suite.Require().NoError(err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", wrong)
	suite.ErrorIs(err, services.ErrOTPInvalid)
}

func (suite *OTPTestSuite) TestMaxAttemptsBurnsCode() {
	ctx := context.Background()

	_, code, err := suite.service.RequestCode(ctx, suite.db, "alice@example.com")
	suite.Require().NoError(err)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", wrong)
		suite.ErrorIs(err, services.ErrOTPInvalid)
	}

	_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", wrong)
	suite.ErrorIs(err, services.ErrOTPMaxAttempts)

	// The code itself is burned, not just the attempt counter.
	_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", code)
	suite.ErrorIs(err, services.ErrOTPInvalid)
}

func (suite *OTPTestSuite) TestCodeExpires() {
	ctx := context.Background()

	_, code, err := suite.service.RequestCode(ctx, suite.db, "alice@example.com")
	suite.Require().NoError(err)

	suite.mr.FastForward(6 * time.Minute)

	_, err = suite.service.VerifyCode(ctx, suite.db, "alice@example.com", code)
	suite.ErrorIs(err, services.ErrOTPInvalid)
}

func TestOTPTestSuite(t *testing.T) {
	suite.Run(t, new(OTPTestSuite))
}
