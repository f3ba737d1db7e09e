package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kubrck/Promptly/internal/core/domain"
	"github.com/kubrck/Promptly/internal/core/ports"
	"github.com/kubrck/Promptly/internal/pkg/metrics"
)

// SessionCookie writes and clears the session cookie on a response.
type SessionCookie interface {
	Issue(c echo.Context, token string) error
	Clear(c echo.Context)
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     SessionCookie
}

func NewAuthHandler(authService ports.AuthService, cookies SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,notblank,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Register creates a new account and starts a session.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		recordAuthAttempt("register", err)
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	recordAuthAttempt("register", err)
	if err != nil {
		return err
	}

	if err := h.cookies.Issue(c, res.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userEnvelope{User: toUserResponse(res.User)})
}

// Login verifies credentials and starts a session.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		recordAuthAttempt("login", err)
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	recordAuthAttempt("login", err)
	if err != nil {
		return err
	}

	if err := h.cookies.Issue(c, res.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(res.User)})
}

// Logout clears the session cookie.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Profile returns the signed-in user.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

// AuthStatus confirms the session still belongs to an existing user.
//
// @Summary      Session status
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorResponse
// @Router       /api/users/auth-status [get]
func (h *AuthHandler) AuthStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), p.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUnauthenticated
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

func recordAuthAttempt(action string, err error) {
	result := "success"
	var ve *ValidationError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserExists):
		result = "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, ErrInvalidPayload), errors.As(err, &ve):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}
