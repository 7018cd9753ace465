package jwt

import (
	"strings"

	"art-market/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey is where the authenticated user id lives in gin.Context.
	ContextUserIDKey = "auth_user_id"
	// ContextRoleKey is where the authenticated role lives in gin.Context.
	ContextRoleKey = "auth_role"
)

// AuthMiddleware extracts Authorization: Bearer <token>, verifies it and
// stores the user id and role in the context. Requests without a valid
// token are refused before any handler logic runs.
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing Authorization header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "Authorization header must be Bearer <token>")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		userID := claims.UserID()
		if userID == 0 {
			response.Unauthorized(c, "invalid token subject")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// GetUserID returns the authenticated user id from gin.Context, 0 when the
// request is unauthenticated.
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetRole returns the authenticated role from gin.Context.
func GetRole(c *gin.Context) string {
	if v, exists := c.Get(ContextRoleKey); exists {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
