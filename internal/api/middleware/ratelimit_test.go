package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kubrck/Promptly/internal/core/domain"
)

type stubLimiter struct {
	allow    bool
	err      error
	calls    int
	subject  string
	scope    string
	limitArg int
}

func (s *stubLimiter) Allow(_ context.Context, scope, subject string, limit int) (bool, error) {
	s.calls++
	s.scope, s.subject, s.limitArg = scope, subject, limit
	return s.allow, s.err
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRateLimit_Allows(t *testing.T) {
	limiter := &stubLimiter{allow: true}
	c := newCtx()
	c.Request().RemoteAddr = "10.1.2.3:5555"

	if err := RateLimit(limiter, ScopeAuth, 5, ByClientIP, zerolog.Nop())(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limiter.scope != ScopeAuth || limiter.subject != "10.1.2.3" || limiter.limitArg != 5 {
		t.Fatalf("unexpected limiter call: %+v", limiter)
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	limiter := &stubLimiter{allow: false}

	err := RateLimit(limiter, ScopeAuth, 1, ByClientIP, zerolog.Nop())(func(echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(newCtx())

	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	c := newCtx()

	if err := RateLimit(limiter, ScopeAuth, 1, ByClientIP, zerolog.Nop())(ok)(c); err != nil {
		t.Fatalf("expected request to pass, got %v", err)
	}
	if c.Response().Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", c.Response().Status)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	limiter := &stubLimiter{}

	if err := RateLimit(limiter, ScopeMessages, 0, ByPrincipal, zerolog.Nop())(ok)(newCtx()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limiter.calls != 0 {
		t.Fatalf("disabled scope must not consult the limiter")
	}
}

func TestByPrincipal(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(domain.WithPrincipal(req.Context(), domain.Principal{UserID: "u42"}))
	c := e.NewContext(req, httptest.NewRecorder())

	if got := ByPrincipal(c); got != "u42" {
		t.Fatalf("expected principal id, got %q", got)
	}
}
