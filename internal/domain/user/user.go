package user

import (
	"context"

	"github.com/google/uuid"
)

// User is owned by the identity provider; this service only reads it.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// Identity is the human-readable name used when deriving upload filenames.
func (u User) Identity() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
