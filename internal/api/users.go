package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/quizhub/quizctl/internal/model"
)

// UserList is a paginated page of users
type UserList struct {
	Users   []model.User `json:"users"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// ListUsersParams filters the admin user listing
type ListUsersParams struct {
	Page    int
	PerPage int
	Search  string
	Role    model.Role
}

// ListUsers fetches a page of users (administrators only)
func (c *Client) ListUsers(ctx context.Context, params ListUsersParams) (*UserList, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = 20
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("per_page", strconv.Itoa(params.PerPage))
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Role != "" {
		q.Set("role", string(params.Role))
	}

	var list UserList
	if err := c.Get(ctx, "/api/users?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateUserRole changes a user's role (administrators only)
func (c *Client) UpdateUserRole(ctx context.Context, id model.UserID, role model.Role) error {
	req := map[string]string{"role": string(role)}
	return c.Put(ctx, fmt.Sprintf("/api/users/%d/role", id), req, nil)
}

// BlockUser blocks a user for the given number of hours
func (c *Client) BlockUser(ctx context.Context, id model.UserID, hours int) error {
	req := map[string]any{"block": true, "hours": hours}
	return c.Put(ctx, fmt.Sprintf("/api/users/%d/block", id), req, nil)
}

// UnblockUser lifts a user's block
func (c *Client) UnblockUser(ctx context.Context, id model.UserID) error {
	req := map[string]any{"block": false}
	return c.Put(ctx, fmt.Sprintf("/api/users/%d/block", id), req, nil)
}

// DeleteUser removes a user account (administrators only)
func (c *Client) DeleteUser(ctx context.Context, id model.UserID) error {
	return c.Delete(ctx, fmt.Sprintf("/api/users/%d", id))
}

// GetUserStats fetches aggregate account counts (administrators only)
func (c *Client) GetUserStats(ctx context.Context) (*model.UserStats, error) {
	var stats model.UserStats
	if err := c.Get(ctx, "/api/users/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// updateProfileResponse allows the backend to wrap the canonical record
type updateProfileResponse struct {
	User *model.User `json:"user"`
}

// UpdateProfile submits a partial profile update and returns the server's
// canonical user record
func (c *Client) UpdateProfile(ctx context.Context, patch *model.UserPatch) (*model.User, error) {
	var resp updateProfileResponse
	if err := c.Put(ctx, "/api/profile", patch, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UploadProfileImage uploads a profile image as multipart form data and
// returns the stored image path
func (c *Client) UploadProfileImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/profile/upload-image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", decodeError(resp.StatusCode, body)
	}

	var result struct {
		ProfileImage string `json:"profile_image"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return result.ProfileImage, nil
}
