package handlers

import (
	"net/http"
	"strings"

	"todo-starter/backend/internal/services"
	"todo-starter/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db              *gorm.DB
	authService     services.AuthService
	registerService services.RegisterService
	otpService      services.OTPService
	jobs            *worker.Worker
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, registerService services.RegisterService, otpService services.OTPService, jobs *worker.Worker) *AuthHandler {
	return &AuthHandler{
		db:              db,
		authService:     authService,
		registerService: registerService,
		otpService:      otpService,
		jobs:            jobs,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         *UserSummary `json:"user"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	profile, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "registration_failed",
			"message": err.Error(),
		})
		return
	}

	job := worker.NewJob(worker.JobTypeWelcomeEmail, map[string]string{
		"to":   profile.Email,
		"name": profile.FullName,
	})
	h.jobs.Enqueue(c.Request.Context(), worker.QueueEmails, job)

	c.JSON(http.StatusCreated, &UserSummary{
		ID:       profile.ID.String(),
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     profile.Role,
	})
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := h.authService.LoginUser(h.db, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	if !profile.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "account_disabled",
			"message": "Your account has been disabled. Please contact support.",
		})
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateToken(h.db, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate authentication tokens",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		User: &UserSummary{
			ID:       profile.ID.String(),
			Email:    profile.Email,
			FullName: profile.FullName,
			Role:     profile.Role,
		},
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, expiresIn, err := h.authService.RefreshToken(h.db, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	// Revocation of an unknown token still reads as a successful logout.
	h.authService.RevokeToken(h.db, req.RefreshToken)

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

type OTPRequestInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req OTPRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	profile, code, err := h.otpService.RequestCode(c.Request.Context(), h.db, req.Email)
	if err != nil {
		// Whether the account exists is not disclosed.
		c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a code has been sent"})
		return
	}

	job := worker.NewJob(worker.JobTypeOTPEmail, map[string]string{
		"to":   profile.Email,
		"code": code,
	})
	if err := h.jobs.Enqueue(c.Request.Context(), worker.QueueEmails, job); err != nil {
		handleServiceError(c, "auth.otp", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a code has been sent"})
}

type OTPVerifyInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	profile, err := h.otpService.VerifyCode(c.Request.Context(), h.db, req.Email, req.Code)
	if err != nil {
		status := http.StatusUnauthorized
		if err == services.ErrOTPMaxAttempts {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{
			"error":   "invalid_code",
			"message": err.Error(),
		})
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateToken(h.db, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate authentication tokens",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		User: &UserSummary{
			ID:       profile.ID.String(),
			Email:    profile.Email,
			FullName: profile.FullName,
			Role:     profile.Role,
		},
	})
}
