package domain

import (
	"errors"
	"time"
)

var (
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrSigningSecretMissing = errors.New("session signing secret is not configured")
	ErrRateLimited          = errors.New("too many requests")
	ErrInvalidInput         = errors.New("invalid input")
)

// User models a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
