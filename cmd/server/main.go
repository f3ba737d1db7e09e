// Command server runs the Promptly chat API.
//
//	@title						Promptly API
//	@version					1.0
//	@description				Authenticated AI chat backend.
//	@BasePath					/
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						auth_token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kubrck/Promptly/internal/api"
	"github.com/kubrck/Promptly/internal/api/cookie"
	"github.com/kubrck/Promptly/internal/api/handler"
	"github.com/kubrck/Promptly/internal/core/service"
	"github.com/kubrck/Promptly/internal/infrastructure/completion"
	"github.com/kubrck/Promptly/internal/infrastructure/config"
	"github.com/kubrck/Promptly/internal/infrastructure/db/mongo"
	"github.com/kubrck/Promptly/internal/infrastructure/db/redis"
	"github.com/kubrck/Promptly/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	rateWindow      = time.Minute
)

func main() {
	if err := run(); err != nil {
		// The logger may not be up yet.
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		File:   cfg.LogFile,
	})

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "promptly",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	userRepo := mongo.NewUserRepository(db)
	chatRepo := mongo.NewChatRepository(db)
	if err := mongo.EnsureIndexes(ctx, userRepo, chatRepo); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	gateway, err := completion.New(ctx, completion.Config{
		Provider:      cfg.Completion.Provider,
		OpenAIKey:     cfg.Completion.OpenAIKey,
		OpenAIModel:   cfg.Completion.OpenAIModel,
		OpenAIBaseURL: cfg.Completion.OpenAIBaseURL,
		GeminiKey:     cfg.Completion.GeminiKey,
		GeminiModel:   cfg.Completion.GeminiModel,
	})
	if err != nil {
		return err
	}
	defer gateway.Close()
	log.Info().Str("provider", cfg.Completion.Provider).Msg("completion gateway ready")

	sessions := service.NewSessionService(cfg.Session.JWTSecret)
	authService := service.NewAuthService(userRepo, sessions, cfg.Session.TTL, log)
	chatService := service.NewChatService(chatRepo, gateway, log)

	jar, err := cookie.NewJar(cookie.Config{
		Secret: cfg.Session.CookieSecret,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.IsProduction(),
		TTL:    cfg.Session.TTL,
	})
	if err != nil {
		return err
	}

	proxies, err := cfg.ProxyRanges()
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Logger:   log,
		Auth:     authService,
		Sessions: sessions,
		Chats:    chatService,
		Cookies:  jar,
		Limiter:  redis.NewRateLimiter(rdb, rateWindow),
		Limits: api.RateLimits{
			Auth:     cfg.RateLimit.Auth,
			Messages: cfg.RateLimit.Messages,
		},
		Checks: map[string]handler.Check{
			"mongodb": mongo.PingCheck(client),
			"redis":   redis.PingCheck(rdb),
		},
		ClientURL:      cfg.ClientURL,
		StaticDir:      cfg.StaticDir,
		TrustedProxies: proxies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errCh
}
