package api

import (
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/kubrck/Promptly/internal/api/cookie"
	"github.com/kubrck/Promptly/internal/api/handler"
	"github.com/kubrck/Promptly/internal/api/middleware"
	"github.com/kubrck/Promptly/internal/core/ports"

	_ "github.com/kubrck/Promptly/docs"
)

// RateLimits holds per-minute limits; zero disables a scope.
type RateLimits struct {
	Auth     int
	Messages int
}

// Deps is everything the router wires into handlers and middleware.
type Deps struct {
	Logger   zerolog.Logger
	Auth     ports.AuthService
	Sessions ports.SessionService
	Chats    ports.ChatService
	Cookies  *cookie.Jar
	Limiter  middleware.Limiter
	Limits   RateLimits
	Checks   map[string]handler.Check

	ClientURL string
	StaticDir string

	// TrustedProxies are the only peers whose X-Forwarded-For is honoured.
	// Empty means the socket address is the client address.
	TrustedProxies []*net.IPNet

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.IPExtractor = ipExtractor(d.TrustedProxies)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			d.Logger.Error().Err(err).Bytes("stack", stack).Str("path", c.Path()).Msg("panic recovered")
			return err
		},
	}))
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.ClientURL},
		AllowCredentials: true,
		AllowMethods:     []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "promptly",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies)
	chatHandler := handler.NewChatHandler(d.Chats)
	healthHandler := handler.NewHealthHandler(d.Checks)

	requireSession := middleware.Auth(d.Cookies, d.Sessions)
	authLimit := middleware.RateLimit(d.Limiter, middleware.ScopeAuth, d.Limits.Auth, middleware.ByClientIP, d.Logger)
	messageLimit := middleware.RateLimit(d.Limiter, middleware.ScopeMessages, d.Limits.Messages, middleware.ByPrincipal, d.Logger)

	api := e.Group("/api")

	// --- User routes ---
	users := api.Group("/users")
	users.POST("/register", authHandler.Register, authLimit)
	users.POST("/signup", authHandler.Register, authLimit)
	users.POST("/login", authHandler.Login, authLimit)
	users.POST("/logout", authHandler.Logout, requireSession)
	users.GET("/profile", authHandler.Profile, requireSession)
	users.GET("/auth-status", authHandler.AuthStatus, requireSession)

	// --- Chat routes (session required) ---
	chats := api.Group("/chats", requireSession)
	chats.POST("", chatHandler.Create)
	chats.GET("", chatHandler.List)
	chats.GET("/:id", chatHandler.Get)
	chats.POST("/:id/messages", chatHandler.SendMessage, messageLimit)
	chats.DELETE("/:id", chatHandler.Delete)

	// --- Operational routes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if d.StaticDir != "" {
		e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
			Root:  d.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/health") ||
					strings.HasPrefix(p, "/metrics") || strings.HasPrefix(p, "/swagger")
			},
		}))
	}

	return e
}

// ipExtractor resolves the client address used for per-IP rate limits.
func ipExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, p := range proxies {
		opts = append(opts, echo.TrustIPRange(p))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger routes echo's request log through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
