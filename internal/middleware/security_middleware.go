package middleware

import (
	"net/http"
	"strings"

	"dispatch-ledger/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID = "userID"
	KeyRole   = "role"
)

// AuthMiddleware lets a request through only with a valid operator token.
// Reading and editing dispatches stays open; deletes and the assistant sit behind it.
func AuthMiddleware(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Pull the token out of "Authorization: Bearer <token>"
		token, msg := bearerToken(c.GetHeader("Authorization"))
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		// 2. Check signature and expiry
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired, log in again"})
			return
		}

		// 3. Hand the operator to the next handler
		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Log in to change the dispatch register"
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", "Authorization header must start with Bearer"
	}
	return token, ""
}

// RequireRole guards a route to one role. Deleting a dispatch needs "admin".
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyRole) != allowedRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only an " + allowedRole + " can do this on the dispatch register"})
			return
		}
		c.Next()
	}
}

// CurrentUserID is the operator id AuthMiddleware stored, 0 on open routes.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(KeyUserID)
}
