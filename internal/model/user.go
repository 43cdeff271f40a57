package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// ListExcept returns every user but the one with the given identity.
	ListExcept(ctx context.Context, id string) ([]User, error)
}

// User represents a stored account with its credential hash.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the public representation of a user. It never carries the credential.
type UserView struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// View strips the credential from u.
func (u User) View() UserView {
	return UserView{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
	}
}
