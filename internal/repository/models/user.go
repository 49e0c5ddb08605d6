package models

import (
	"time"
)

// User represents a user in the system.
type User struct {
	ID           string    `db:"id"` // ULID
	Username     string    `db:"username"`
	Email        string    `db:"email"` // lowercased
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
