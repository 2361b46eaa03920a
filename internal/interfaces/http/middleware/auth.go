// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Context keys set by the auth middlewares and read by handlers.
const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxIsAdmin   = "is_admin"
)

// AuthMiddleware rejects requests without a valid access token and stores
// the token's identity claims in the request context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, jwtManager)
		if !ok {
			abortUnauthorized(c, "Invalid or missing access token")
			return
		}
		storeClaims(c, claims)
		c.Next()
	}
}

// AdminMiddleware requires an authenticated admin. It must run after
// AuthMiddleware in the chain.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get(ctxIsAdmin)
		if !exists {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !isAdmin.(bool) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtManager *auth.JWTManager) (*auth.Claims, bool) {
	token := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
	if token == "" {
		return nil, false
	}
	claims, err := jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func storeClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserEmail, claims.Email)
	c.Set(ctxIsAdmin, claims.IsAdmin)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
	c.Abort()
}

// GetUserIDFromContext extracts the authenticated user ID
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmailFromContext extracts the authenticated user's email
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get(ctxUserEmail)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// IsAdminFromContext reports whether the authenticated user is an admin
func IsAdminFromContext(c *gin.Context) bool {
	isAdmin, exists := c.Get(ctxIsAdmin)
	if !exists {
		return false
	}
	return isAdmin.(bool)
}
