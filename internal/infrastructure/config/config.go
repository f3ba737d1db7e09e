package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const envProduction = "production"

type Config struct {
	Port      string `env:"PORT,      default=5000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFile   string `env:"LOG_FILE"`
	ClientURL string `env:"CLIENT_URL, default=http://localhost:5173"`
	StaticDir string `env:"STATIC_DIR"`

	// TrustedProxies lists CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Session    SessionConfig
	Completion CompletionConfig
	RateLimit  RateLimitConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, required"`
	Database string `env:"MONGO_DB,  default=promptly"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SessionConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	CookieSecret string        `env:"COOKIE_SECRET"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`
	TTL          time.Duration `env:"SESSION_TTL, default=168h"`
}

type CompletionConfig struct {
	Provider      string `env:"COMPLETION_PROVIDER, default=openai"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL,        default=gpt-3.5-turbo"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	GeminiKey     string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL,        default=gemini-1.5-flash"`
}

type RateLimitConfig struct {
	Auth     int `env:"RATE_LIMIT_AUTH,     default=10"`
	Messages int `env:"RATE_LIMIT_MESSAGES, default=20"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.Session.CookieSecret == "" {
		cfg.Session.CookieSecret = cfg.Session.JWTSecret
	}
	cfg.Completion.Provider = strings.ToLower(strings.TrimSpace(cfg.Completion.Provider))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Completion.Provider {
	case "openai":
		if c.Completion.OpenAIKey == "" {
			return errors.New("load config: OPENAI_API_KEY is required when COMPLETION_PROVIDER=openai")
		}
	case "gemini":
		if c.Completion.GeminiKey == "" {
			return errors.New("load config: GEMINI_API_KEY is required when COMPLETION_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("load config: unsupported COMPLETION_PROVIDER %q", c.Completion.Provider)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("load config: SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if _, err := c.ProxyRanges(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

// ProxyRanges parses TrustedProxies. A bare IP is treated as a single host.
func (c *Config) ProxyRanges() ([]*net.IPNet, error) {
	ranges := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", raw)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			ranges = append(ranges, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		ranges = append(ranges, n)
	}
	return ranges, nil
}
