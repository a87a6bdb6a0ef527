package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"todo-starter/backend/internal/config"
	"todo-starter/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrOTPInvalid     = errors.New("invalid or expired code")
	ErrOTPMaxAttempts = errors.New("too many failed attempts, request a new code")
)

// OTPService issues short-lived email sign-in codes. Codes live in Redis with
// a TTL and a bounded verify-attempt counter keyed per email.
type OTPService interface {
	RequestCode(ctx context.Context, db *gorm.DB, email string) (*models.Profile, string, error)
	VerifyCode(ctx context.Context, db *gorm.DB, email, code string) (*models.Profile, error)
}

type OTPServiceImpl struct {
	client *redis.Client
	cfg    config.AuthConfig
}

func NewOTPService(client *redis.Client, cfg config.AuthConfig) *OTPServiceImpl {
	return &OTPServiceImpl{client: client, cfg: cfg}
}

func otpKey(email string) string {
	return "otp:code:" + email
}

func otpAttemptsKey(email string) string {
	return "otp:attempts:" + email
}

// RequestCode generates a 6-digit code for an existing profile and stores it
// under the configured TTL. The code is returned so the caller can enqueue
// the delivery email; it is never logged.
func (s *OTPServiceImpl) RequestCode(ctx context.Context, db *gorm.DB, email string) (*models.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var profile models.Profile
	if err := db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, "", err
	}

	if err := s.client.Set(ctx, otpKey(email), code, s.cfg.OTPTTL).Err(); err != nil {
		return nil, "", fmt.Errorf("failed to store otp code: %w", err)
	}
	if err := s.client.Set(ctx, otpAttemptsKey(email), 0, s.cfg.OTPTTL).Err(); err != nil {
		return nil, "", fmt.Errorf("failed to reset otp attempts: %w", err)
	}

	return &profile, code, nil
}

func (s *OTPServiceImpl) VerifyCode(ctx context.Context, db *gorm.DB, email, code string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return nil, ErrOTPInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read otp code: %w", err)
	}

	attempts, err := s.client.Incr(ctx, otpAttemptsKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count otp attempt: %w", err)
	}
	if attempts > int64(s.cfg.OTPMaxAttempts) {
		s.client.Del(ctx, otpKey(email), otpAttemptsKey(email))
		return nil, ErrOTPMaxAttempts
	}

	if stored != code {
		return nil, ErrOTPInvalid
	}

	s.client.Del(ctx, otpKey(email), otpAttemptsKey(email))

	var profile models.Profile
	if err := db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
