package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/kubrck/Promptly/internal/core/domain"
	"github.com/kubrck/Promptly/internal/core/ports"
)

// TokenSource extracts the raw session token from a request.
type TokenSource interface {
	Token(c echo.Context) (string, error)
}

// Auth verifies the session cookie and attaches the resulting principal to
// the request context. Any failure is domain.ErrUnauthenticated.
func Auth(tokens TokenSource, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := tokens.Token(c)
			if err != nil {
				return domain.ErrUnauthenticated
			}

			principal, err := sessions.Verify(token)
			if err != nil {
				return domain.ErrUnauthenticated
			}

			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}
