package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create fails with domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error
}
