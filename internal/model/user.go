package model

import "time"

// UserID uniquely identifies a user across the system
type UserID int64

// User represents a platform account as returned by the backend
type User struct {
	ID           UserID     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	DateOfBirth  string     `json:"date_of_birth,omitempty"`
	Gender       string     `json:"gender,omitempty"`
	Country      string     `json:"country,omitempty"`
	Street       string     `json:"street,omitempty"`
	Number       string     `json:"number,omitempty"`
	Role         Role       `json:"role"`
	ProfileImage string     `json:"profile_image,omitempty"`
	IsBlocked    bool       `json:"is_blocked"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns the user's name for presentation, falling back
// to the email address when the name fields are empty
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserPatch carries partial profile updates. Nil fields are left unchanged.
type UserPatch struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Country     *string `json:"country,omitempty"`
	Street      *string `json:"street,omitempty"`
	Number      *string `json:"number,omitempty"`
}

// UserStats is the admin-facing aggregate returned by /api/users/stats
type UserStats struct {
	TotalUsers     int `json:"total_users"`
	Players        int `json:"players"`
	Moderators     int `json:"moderators"`
	Administrators int `json:"administrators"`
	BlockedUsers   int `json:"blocked_users"`
	NewThisMonth   int `json:"new_this_month"`
}
