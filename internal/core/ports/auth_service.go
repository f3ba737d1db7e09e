package ports

import (
	"context"
	"time"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// SessionService issues and verifies signed session tokens.
type SessionService interface {
	Issue(userID, email string, ttl time.Duration) (string, error)
	Verify(token string) (domain.Principal, error)
}
