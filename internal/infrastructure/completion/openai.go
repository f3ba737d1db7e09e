package completion

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kubrck/Promptly/internal/core/domain"
)

const defaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAIGateway sends chat completions to OpenAI or a compatible endpoint.
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

func NewOpenAIGateway(apiKey, model, baseURL string) (*OpenAIGateway, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGateway{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Complete returns the first choice's content. An empty content is not an
// error; a response without choices is.
func (g *OpenAIGateway) Complete(ctx context.Context, msgs []domain.CompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", upstream("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w: response has no choices", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGateway) Close() error { return nil }

func openAIRole(r domain.Role) string {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
