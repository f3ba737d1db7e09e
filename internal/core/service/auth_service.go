package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kubrck/Promptly/internal/core/domain"
	"github.com/kubrck/Promptly/internal/core/ports"
	"github.com/kubrck/Promptly/internal/pkg/metrics"
)

// AuthService implements registration, login and profile lookup.
type AuthService struct {
	repo     ports.UserRepository
	sessions ports.SessionService
	tokenTTL time.Duration
	logger   zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, sessions ports.SessionService, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultSessionTTL
	}
	return &AuthService{repo: repo, sessions: sessions, tokenTTL: tokenTTL, logger: logger}
}

// Register creates the account and issues a session token. The email check
// is a plain read; the repository's unique index reports a racing insert as
// domain.ErrUserExists as well.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.sessions.Issue(created.ID, created.Email, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login verifies the credentials. An unknown email and a wrong password both
// yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID, user.Email, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	return &ports.AuthResult{User: user, Token: token}, nil
}

// Profile returns the stored user without its password hash.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := *user
	profile.PasswordHash = ""
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
