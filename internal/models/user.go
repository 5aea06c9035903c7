package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Department   *string    `json:"department,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// RegisterRequest represents the request body for self-registration
type RegisterRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	FullName   string  `json:"full_name" validate:"required"`
	Role       string  `json:"role" validate:"required"`
	Department *string `json:"department,omitempty"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	User      User   `json:"user"`
}

// Session represents one issued login token
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Roles available in the system. Admins can mutate inventory and upload
// files; viewers only read.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Approval states for accounts. Viewer signups are approved immediately;
// admin signups wait for master verification.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}

// CanLogin reports whether the account is allowed to authenticate
func (u *User) CanLogin() bool {
	return u.Status == StatusApproved
}

// IsAdmin checks if the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Redacted returns a copy of the user with sensitive fields removed
func (u *User) Redacted() User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		Status:      u.Status,
		Department:  u.Department,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
