package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/auth"
	"github.com/cisnerospos/posgw/internal/session"
)

const sessionContextKey = "session"

// AuthMiddleware validates the gateway session token and resolves the
// live session
func AuthMiddleware(tokens *auth.TokenService, sessions *session.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		sess, ok := sessions.Get(claims.SessionID)
		if !ok {
			// Valid token but the session is gone (restart or logout).
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// GetSessionFromContext retrieves the session set by AuthMiddleware
func GetSessionFromContext(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}
