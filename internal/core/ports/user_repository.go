package ports

import (
	"context"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create stores a new user. A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
