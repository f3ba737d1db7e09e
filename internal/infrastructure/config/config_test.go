package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"MONGO_URI":      "mongodb://localhost:27017",
		"JWT_SECRET":     "jwt",
		"OPENAI_API_KEY": "sk-test",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.Equal(t, "promptly", cfg.Mongo.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "jwt", cfg.Session.CookieSecret, "cookie secret falls back to the JWT secret")
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Completion.OpenAIModel)
	assert.Equal(t, 10, cfg.RateLimit.Auth)
	assert.Equal(t, 20, cfg.RateLimit.Messages)
}

func TestLoad_Overrides(t *testing.T) {
	env := baseEnv()
	env["ENV"] = "Production"
	env["PORT"] = "8080"
	env["COOKIE_SECRET"] = "cookie"
	env["SESSION_TTL"] = "1h"
	env["RATE_LIMIT_AUTH"] = "0"
	env["COMPLETION_PROVIDER"] = "Gemini"
	env["GEMINI_API_KEY"] = "g-key"

	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "cookie", cfg.Session.CookieSecret)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 0, cfg.RateLimit.Auth)
	assert.Equal(t, "gemini", cfg.Completion.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Completion.GeminiModel)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "JWT_SECRET", "OPENAI_API_KEY"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)

			_, err := load(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProviderValidation(t *testing.T) {
	env := baseEnv()
	env["COMPLETION_PROVIDER"] = "gemini"
	_, err := load(context.Background(), envconfig.MapLookuper(env))
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	env["COMPLETION_PROVIDER"] = "llama"
	_, err = load(context.Background(), envconfig.MapLookuper(env))
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoad_InvalidTTL(t *testing.T) {
	env := baseEnv()
	env["SESSION_TTL"] = "-5m"
	_, err := load(context.Background(), envconfig.MapLookuper(env))
	assert.Error(t, err)
}

func TestLoad_TrustedProxies(t *testing.T) {
	env := baseEnv()
	env["TRUSTED_PROXIES"] = "10.0.0.0/8, 192.0.2.10"

	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	ranges, err := cfg.ProxyRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, "10.0.0.0/8", ranges[0].String())
	assert.Equal(t, "192.0.2.10/32", ranges[1].String())

	env["TRUSTED_PROXIES"] = "not-an-ip"
	_, err = load(context.Background(), envconfig.MapLookuper(env))
	assert.Error(t, err)
}

func TestLoad_NoTrustedProxies(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	ranges, err := cfg.ProxyRanges()
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
