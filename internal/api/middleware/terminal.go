package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/repository"
)

const terminalContextKey = "terminal"

// TerminalHeader carries the register's API key on checkout requests
const TerminalHeader = "X-Terminal-Key"

// TerminalMiddleware authenticates the POS register submitting a checkout
func TerminalMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(TerminalHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing terminal key"})
			return
		}

		terminal, err := repos.Terminal.GetByAPIKey(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Terminal authentication failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid terminal key"})
			return
		}

		c.Set(terminalContextKey, terminal)
		c.Next()
	}
}

// GetTerminalFromContext retrieves the terminal set by TerminalMiddleware
func GetTerminalFromContext(c *gin.Context) (*domain.Terminal, bool) {
	value, ok := c.Get(terminalContextKey)
	if !ok {
		return nil, false
	}
	terminal, ok := value.(*domain.Terminal)
	return terminal, ok
}
