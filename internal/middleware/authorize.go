package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin is the single role gate in the codebase. It runs strictly
// after Auth and trusts nothing but the user Auth resolved from the
// verified token.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
