package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bobsgarage/api/internal/models"
	"bobsgarage/api/internal/security"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextUserKey   = "current_user"
	ContextClaimsKey = "access_claims"
)

// UserSource is the slice of the user repository the resolver needs.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

// Auth resolves a bearer access token into the authenticated user. The
// rejection reason distinguishes expiry from tampering so the client knows
// whether a refresh is worth attempting; recovery itself is entirely the
// client's job.
func Auth(accessSecret string, users UserSource, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, accessSecret)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, security.ErrTokenExpired) {
				reason = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}

		// A verified token is not enough on its own; the account behind it
		// must still exist.
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		touchLastLogin(users, user.ID, log)

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, *claims)

		c.Next()
	}
}

// touchLastLogin is fire-and-forget: the stamp must not add latency to the
// request or fail it. Concurrent requests from the same user are
// last-write-wins.
func touchLastLogin(users UserSource, userID int64, log zerolog.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := users.TouchLastLogin(ctx, userID); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("last login update failed")
		}
	}()
}

// CurrentUser pulls the resolved user out of the gin context.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(ContextUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
