package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kettlegourmet/hrm/internal/models"
)

const (
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"
	UserKey   = "user"
)

// TokenValidator is satisfied by *service.AuthService
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Validates the JWT, then loads the user it names. Role and email come from
// the stored user, so disabling an account or changing its role takes effect
// before the token expires.
func RequireAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		rawID, _ := claims[UserIDKey].(string)
		userID, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		user, err := auth.GetUserByID(c.Request.Context(), uint(userID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}
		if user.IsDisabled() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Account is disabled",
			})
			return
		}

		// Store user info in context
		c.Set(UserIDKey, user.ID)
		c.Set(EmailKey, user.Email)
		c.Set(RoleKey, user.Role)
		c.Set(UserKey, user)

		c.Next()
	}
}

// Must run after RequireAuth
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "You do not have access to this resource",
		})
	}
}

// Returns the user loaded by RequireAuth, nil when unauthenticated
func CurrentUser(c *gin.Context) *models.User {
	v, _ := c.Get(UserKey)
	user, _ := v.(*models.User)
	return user
}

// Returns the authenticated user's id, zero when unauthenticated
func CurrentUserID(c *gin.Context) uint {
	id, _ := c.Get(UserIDKey)
	userID, _ := id.(uint)
	return userID
}
