package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
)

// UserRequest creates or updates a backend account. Password is
// required on create; on update an empty password leaves it unchanged.
type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
	Name     string `json:"name" binding:"required"`
	LastName string `json:"last_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

func (r UserRequest) toInput() backend.UserInput {
	return backend.UserInput{
		Username: r.Username,
		Password: r.Password,
		Nombre:   r.Name,
		Apellido: r.LastName,
		Email:    r.Email,
	}
}

// HandleListUsers handles GET /v1/users
func HandleListUsers(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		users, err := client.ListUsers(c.Request.Context(), sess.BackendToken)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		c.JSON(http.StatusOK, gin.H{"users": resp, "count": len(resp)})
	}
}

// HandleCreateUser handles POST /v1/users
func HandleCreateUser(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		if req.Password == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "password is required"})
			return
		}

		user, err := client.CreateUser(c.Request.Context(), sess.BackendToken, req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}

		logger.Info("User created", zap.String("username", user.Username))
		c.JSON(http.StatusCreated, toUserResponse(*user))
	}
}

// HandleUpdateUser handles PUT /v1/users/:id
func HandleUpdateUser(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		user, err := client.UpdateUser(c.Request.Context(), sess.BackendToken, c.Param("id"), req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, toUserResponse(*user))
	}
}

// HandleDeleteUser handles DELETE /v1/users/:id
func HandleDeleteUser(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if sess.User.ID == c.Param("id") {
			c.JSON(http.StatusConflict, gin.H{"error": "cannot delete the logged-in account"})
			return
		}

		if err := client.DeleteUser(c.Request.Context(), sess.BackendToken, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		logger.Info("User deleted", zap.String("user_id", c.Param("id")))
		c.Status(http.StatusNoContent)
	}
}
