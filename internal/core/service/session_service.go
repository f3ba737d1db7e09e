package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// DefaultSessionTTL matches the lifetime of the session cookie.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionClaims is the signed payload of a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// SessionService signs and verifies HS256 session tokens. It keeps no
// server-side state.
type SessionService struct {
	secret []byte
	now    func() time.Time
}

func NewSessionService(secret string) *SessionService {
	return &SessionService{secret: []byte(secret), now: time.Now}
}

// Issue returns a token for the user valid for ttl. A non-positive ttl falls
// back to DefaultSessionTTL.
func (s *SessionService) Issue(userID, email string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", domain.ErrSigningSecretMissing
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded principal.
// Every failure is reported as domain.ErrUnauthenticated.
func (s *SessionService) Verify(token string) (domain.Principal, error) {
	if token == "" || len(s.secret) == 0 {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, errors.Join(domain.ErrUnauthenticated, err)
	}
	if claims.UserID == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	return domain.Principal{UserID: claims.UserID, Email: claims.Email}, nil
}
