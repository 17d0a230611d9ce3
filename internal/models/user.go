package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// User represents a teacher or administrator stored in the users table.
type User struct {
	ID                   string     `db:"id" json:"id"`
	LoginID              *string    `db:"login_id" json:"login_id,omitempty"`
	Email                *string    `db:"email" json:"email,omitempty"`
	PasswordHash         string     `db:"password_hash" json:"-"`
	Name                 string     `db:"name" json:"name"`
	Picture              *string    `db:"picture" json:"picture,omitempty"`
	GoogleID             *string    `db:"google_id" json:"-"`
	GoogleAccessToken    *string    `db:"google_access_token" json:"-"`
	GoogleRefreshToken   *string    `db:"google_refresh_token" json:"-"`
	GoogleTokenExpiresAt *time.Time `db:"google_token_expires_at" json:"-"`
	Role                 UserRole   `db:"role" json:"role"`
	Active               bool       `db:"is_active" json:"is_active"`
	LastLogin            *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// HasGoogleLink reports whether the user has stored Google credentials.
func (u *User) HasGoogleLink() bool {
	return u.GoogleAccessToken != nil && *u.GoogleAccessToken != ""
}

// EmailValue returns the email or an empty string.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// GoogleProfile is the subset of Google account data used to link users.
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// GoogleTokens carries the OAuth tokens persisted for calendar access.
type GoogleTokens struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
