// Package cookie carries the session token between the API and the browser.
package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// Name is the session cookie name.
const Name = "auth_token"

type Config struct {
	Secret string
	Domain string
	Secure bool
	TTL    time.Duration
}

// Jar signs session tokens into an HTTP-only cookie and reads them back.
type Jar struct {
	codec  *securecookie.SecureCookie
	domain string
	secure bool
	ttl    time.Duration
}

func NewJar(cfg Config) (*Jar, error) {
	if cfg.Secret == "" {
		return nil, errors.New("cookie: secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cookie: ttl must be positive, got %s", cfg.TTL)
	}

	codec := securecookie.New([]byte(cfg.Secret), nil)
	codec.MaxAge(int(cfg.TTL.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &Jar{codec: codec, domain: cfg.Domain, secure: cfg.Secure, ttl: cfg.TTL}, nil
}

// Issue clears any previous session cookie and sets a fresh one holding token.
func (j *Jar) Issue(c echo.Context, token string) error {
	j.Clear(c)

	value, err := j.codec.Encode(Name, token)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}

	ck := j.base()
	ck.Value = value
	ck.Expires = time.Now().Add(j.ttl)
	ck.MaxAge = int(j.ttl.Seconds())
	c.SetCookie(ck)
	return nil
}

// Clear expires the session cookie.
func (j *Jar) Clear(c echo.Context) {
	ck := j.base()
	ck.Expires = time.Unix(0, 0)
	ck.MaxAge = -1
	c.SetCookie(ck)
}

// Token returns the session token from the request. A missing cookie or a
// bad signature is reported as domain.ErrUnauthenticated.
func (j *Jar) Token(c echo.Context) (string, error) {
	ck, err := c.Cookie(Name)
	if err != nil || ck.Value == "" {
		return "", domain.ErrUnauthenticated
	}

	var token string
	if err := j.codec.Decode(Name, ck.Value, &token); err != nil {
		return "", errors.Join(domain.ErrUnauthenticated, err)
	}
	return token, nil
}

func (j *Jar) base() *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Path:     "/",
		Domain:   j.domain,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
