package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a domain user object
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User instance. Emails are stored lowercased.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail is the canonical form used for storage and duplicate checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the user
func (u *User) Validate() error {
	if u.Username == "" {
		return NewValidationError("username is required")
	}
	if u.Email == "" {
		return NewValidationError("email is required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password hash is required")
	}
	return nil
}

// UserRepository defines the interface for user data persistence.
// Lookups return nil, nil when no user matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
