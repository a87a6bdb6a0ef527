package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"todo-starter/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and stores user_id and user_role
// in the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := extractUserFromToken(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Missing or invalid authorization token",
			})
			return
		}

		c.Set("user_id", userID.String())
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireRole gates a route on the role hierarchy; admin passes user gates.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		if !models.HasRole(role, requiredRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":         "insufficient_permissions",
				"required_role": requiredRole,
				"user_role":     role,
			})
			return
		}
		c.Next()
	}
}

func extractUserFromToken(c *gin.Context, jwtSecret string) (uuid.UUID, string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", fmt.Errorf("missing authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return uuid.Nil, "", fmt.Errorf("authorization header must be a bearer token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("token missing user_id claim")
	}

	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid user_id claim")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	return userID, role, nil
}
