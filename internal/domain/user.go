package domain

import (
	"fmt"
	"time"
)

// User represents a registered account. Each user is a tenant: documents and
// chunks are owned by exactly one user and never shared.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser creates a new User instance
func NewUser(id, username, email, passwordHash string, createdAt time.Time) *User {
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if u.Username == "" {
		return fmt.Errorf("user Username is required")
	}

	if u.Email == "" {
		return fmt.Errorf("user Email is required")
	}

	if u.PasswordHash == "" {
		return fmt.Errorf("user PasswordHash is required")
	}

	return nil
}
