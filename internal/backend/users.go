package backend

import (
	"context"
	"net/http"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// userPayload is the backend's user shape
type userPayload struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
}

func (u userPayload) toDomain() domain.User {
	return domain.User{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Nombre,
		LastName: u.Apellido,
		Email:    u.Email,
	}
}

// authPayload is the login/register response
type authPayload struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

// RegisterInput is the registration payload
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
}

// UserInput is the create/update payload for user administration
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
}

// Login exchanges credentials for a backend token
func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var payload authPayload
	if err := decodeInto("/api/login", body, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, &errors.ErrMalformedResponse{Endpoint: "/api/login", Reason: "missing token"}
	}

	return &domain.AuthResult{Token: payload.Token, User: payload.User.toDomain()}, nil
}

// Register creates an account and returns its first token
func (c *Client) Register(ctx context.Context, input RegisterInput) (*domain.AuthResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/register", "", input)
	if err != nil {
		return nil, err
	}

	var payload authPayload
	if err := decodeInto("/api/register", body, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, &errors.ErrMalformedResponse{Endpoint: "/api/register", Reason: "missing token"}
	}

	return &domain.AuthResult{Token: payload.Token, User: payload.User.toDomain()}, nil
}

// ListUsers fetches all backend accounts
func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/users", token, nil)
	if err != nil {
		return nil, err
	}

	var payloads []userPayload
	if err := decodeInto("/api/users", body, &payloads); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(payloads))
	for _, p := range payloads {
		users = append(users, p.toDomain())
	}
	return users, nil
}

// CreateUser creates a backend account
func (c *Client) CreateUser(ctx context.Context, token string, input UserInput) (*domain.User, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/users", token, input)
	if err != nil {
		return nil, err
	}

	var payload userPayload
	if err := decodeInto("/api/users", body, &payload); err != nil {
		return nil, err
	}
	user := payload.toDomain()
	return &user, nil
}

// UpdateUser updates a backend account
func (c *Client) UpdateUser(ctx context.Context, token, userID string, input UserInput) (*domain.User, error) {
	path := "/api/users/" + userID
	body, err := c.do(ctx, http.MethodPut, path, token, input)
	if err != nil {
		return nil, err
	}

	var payload userPayload
	if err := decodeInto(path, body, &payload); err != nil {
		return nil, err
	}
	user := payload.toDomain()
	return &user, nil
}

// DeleteUser removes a backend account
func (c *Client) DeleteUser(ctx context.Context, token, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/users/"+userID, token, nil)
	return err
}
