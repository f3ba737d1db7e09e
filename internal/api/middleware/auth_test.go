package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kubrck/Promptly/internal/core/domain"
)

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) Token(echo.Context) (string, error) { return s.token, s.err }

type stubSessions struct {
	principal domain.Principal
	err       error
	seen      string
}

func (s *stubSessions) Issue(string, string, time.Duration) (string, error) { return "", nil }

func (s *stubSessions) Verify(token string) (domain.Principal, error) {
	s.seen = token
	return s.principal, s.err
}

func newCtx() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestAuthMiddleware_ValidSession(t *testing.T) {
	sessions := &stubSessions{principal: domain.Principal{UserID: "u1", Email: "a@x.com"}}
	c := newCtx()

	called := false
	handler := Auth(stubTokens{token: "tok"}, sessions)(func(c echo.Context) error {
		called = true
		p, ok := domain.PrincipalFrom(c.Request().Context())
		if !ok {
			t.Fatalf("principal not attached")
		}
		if p.UserID != "u1" || p.Email != "a@x.com" {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if sessions.seen != "tok" {
		t.Fatalf("verify got %q", sessions.seen)
	}
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	handler := Auth(stubTokens{err: domain.ErrUnauthenticated}, &stubSessions{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(newCtx()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	sessions := &stubSessions{err: errors.Join(domain.ErrUnauthenticated, errors.New("token is expired"))}
	handler := Auth(stubTokens{token: "expired"}, sessions)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(newCtx()); err != domain.ErrUnauthenticated {
		t.Fatalf("expected bare ErrUnauthenticated, got %v", err)
	}
}
