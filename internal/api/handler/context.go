package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware. Its
// absence means the route was wired without authentication.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFrom(c.Request().Context())
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}
