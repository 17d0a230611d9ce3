package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	LoginID  string `json:"login_id" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// IDTokenLoginRequest carries a Google ID token obtained by the frontend.
type IDTokenLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID      string   `json:"id"`
	Email   string   `json:"email,omitempty"`
	Name    string   `json:"name"`
	Picture string   `json:"picture,omitempty"`
	Role    UserRole `json:"role"`
}

// NewUserInfo projects a user into its public form.
func NewUserInfo(u *User) UserInfo {
	info := UserInfo{ID: u.ID, Email: u.EmailValue(), Name: u.Name, Role: u.Role}
	if u.Picture != nil {
		info.Picture = *u.Picture
	}
	return info
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
