package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bobsgarage/api/internal/security"
)

// OptionalAuth resolves a bearer token when one is present but never
// rejects the request. Public pages use it so admins browsing the site see
// their drafts while anonymous visitors pass straight through.
func OptionalAuth(accessSecret string, users UserSource, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		claims, err := security.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "), accessSecret)
		if err != nil {
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		touchLastLogin(users, user.ID, log)

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, *claims)
		c.Next()
	}
}
