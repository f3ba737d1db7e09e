package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kubrck/Promptly/internal/core/domain"
	"github.com/kubrck/Promptly/internal/pkg/metrics"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config selects and configures the completion provider.
type Config struct {
	Provider string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey   string
	GeminiModel string
}

// Gateway is a completion provider holding client resources.
type Gateway interface {
	Complete(ctx context.Context, msgs []domain.CompletionMessage) (string, error)
	Close() error
}

// New builds the gateway for cfg.Provider wrapped with request metrics.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}

	var (
		gw  Gateway
		err error
	)
	switch provider {
	case ProviderOpenAI:
		gw, err = NewOpenAIGateway(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case ProviderGemini:
		gw, err = NewGeminiGateway(ctx, cfg.GeminiKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &instrumented{provider: provider, next: gw}, nil
}

type instrumented struct {
	provider string
	next     Gateway
}

func (g *instrumented) Complete(ctx context.Context, msgs []domain.CompletionMessage) (string, error) {
	start := time.Now()
	reply, err := g.next.Complete(ctx, msgs)
	metrics.CompletionDuration.WithLabelValues(g.provider).Observe(time.Since(start).Seconds())

	result := "success"
	switch {
	case err != nil:
		result = "error"
	case reply == "":
		result = "empty"
	}
	metrics.CompletionRequestsTotal.WithLabelValues(g.provider, result).Inc()
	return reply, err
}

func (g *instrumented) Close() error {
	return g.next.Close()
}

func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
}
