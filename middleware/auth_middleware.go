package middleware

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"atelierlux/api/logger"
	"atelierlux/api/utils"
)

// SessionChecker reports whether an admin session id is still registered.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// AuthRequired guards the admin endpoints: a valid JWT (cookie or bearer
// header) whose session is still live, or the internal API key.
func AuthRequired(sessions SessionChecker, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != "" && apiKey == os.Getenv("INTERNAL_API_KEY") {
			c.Next()
			return
		}

		tokenString, err := c.Cookie("jwt_token")
		if err != nil {
			tokenString = c.GetHeader("Authorization")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
			if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
				tokenString = tokenString[7:]
			}
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			log.Debug("rejected invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		live, err := sessions.Exists(c.Request.Context(), claims.SessionID)
		if err != nil {
			log.Error("session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
			return
		}
		if !live {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Session expired"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("session_id", claims.SessionID)

		c.Next()
	}
}
