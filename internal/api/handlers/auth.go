package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/auth"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/session"
)

// LoginRequest carries the credentials forwarded to the backend
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest carries a new account registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	LastName string `json:"last_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// AuthResponse is returned on successful login or registration
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// HandleLogin handles POST /v1/auth/login
func HandleLogin(client *backend.Client, sessions *session.Registry, tokens *auth.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		result, err := client.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		sess := sessions.Create(result.User, result.Token, tokens.TTL())

		// Warm the catalog snapshot so the sales screen can render
		// immediately; a failure here is not fatal to the login.
		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to warm catalog snapshot at login", zap.Error(err))
		}

		token, expiresAt, err := tokens.Generate(sess.ID, result.User.Username)
		if err != nil {
			logger.Error("Failed to sign session token", zap.Error(err))
			sessions.Delete(sess.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Token:     token,
			ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			User:      toUserResponse(result.User),
		})
	}
}

// HandleRegister handles POST /v1/auth/register
func HandleRegister(client *backend.Client, sessions *session.Registry, tokens *auth.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		result, err := client.Register(c.Request.Context(), backend.RegisterInput{
			Username: req.Username,
			Password: req.Password,
			Nombre:   req.Name,
			Apellido: req.LastName,
			Email:    req.Email,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		sess := sessions.Create(result.User, result.Token, tokens.TTL())
		token, expiresAt, err := tokens.Generate(sess.ID, result.User.Username)
		if err != nil {
			logger.Error("Failed to sign session token", zap.Error(err))
			sessions.Delete(sess.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, AuthResponse{
			Token:     token,
			ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			User:      toUserResponse(result.User),
		})
	}
}

// HandleLogout handles POST /v1/auth/logout
func HandleLogout(sessions *session.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sessions.Delete(sess.ID)
		logger.Info("Session closed", zap.String("session_id", sess.ID))
		c.Status(http.StatusNoContent)
	}
}
