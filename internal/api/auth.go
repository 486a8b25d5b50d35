package api

import (
	"context"
	"net/http"

	"github.com/quizhub/quizctl/internal/model"
)

// LoginResponse is the body of a successful login or registration
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *model.User `json:"user"`
	Message      string      `json:"message,omitempty"`
}

// RefreshResponse is the body of a successful token refresh
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message,omitempty"`
}

// RegisterRequest is the account-creation payload
type RegisterRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender,omitempty"`
	Country     string `json:"country,omitempty"`
	Street      string `json:"street,omitempty"`
	Number      string `json:"number,omitempty"`
}

// Login authenticates with email and password. Lockout and
// invalid-credential rejections come back as *APIError.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.Post(ctx, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account; a successful registration also logs in
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.Post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current token server-side
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/api/auth/logout", nil, nil)
}

// RefreshToken exchanges a refresh token for a new access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req := map[string]string{"refresh_token": refreshToken}
	var resp RefreshResponse
	if err := c.Post(ctx, "/api/auth/refresh", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken asks the backend whether the attached token is accepted.
// A 401 reads as invalid, not as an error.
func (c *Client) ValidateToken(ctx context.Context) (bool, error) {
	err := c.Get(ctx, "/api/auth/validate", nil)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetProfile fetches the authenticated user's canonical record
func (c *Client) GetProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/api/profile", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
