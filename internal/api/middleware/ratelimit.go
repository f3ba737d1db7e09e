package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kubrck/Promptly/internal/core/domain"
	"github.com/kubrck/Promptly/internal/pkg/metrics"
)

const (
	ScopeAuth     = "auth"
	ScopeMessages = "messages"
)

// Limiter reports whether subject may make another request in scope.
type Limiter interface {
	Allow(ctx context.Context, scope, subject string, limit int) (bool, error)
}

// SubjectFunc picks the key a request is counted under.
type SubjectFunc func(c echo.Context) string

// ByClientIP counts requests per client address.
func ByClientIP(c echo.Context) string {
	return c.RealIP()
}

// ByPrincipal counts requests per authenticated user. It must run after Auth.
func ByPrincipal(c echo.Context) string {
	if p, ok := domain.PrincipalFrom(c.Request().Context()); ok {
		return p.UserID
	}
	return c.RealIP()
}

// RateLimit rejects requests over limit with domain.ErrRateLimited. A limit
// of zero or less disables the check. Limiter failures let the request
// through.
func RateLimit(limiter Limiter, scope string, limit int, subject SubjectFunc, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), scope, subject(c), limit)
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
