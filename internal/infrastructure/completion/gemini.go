package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kubrck/Promptly/internal/core/domain"
)

const (
	defaultGeminiModel = "gemini-1.5-flash"
	geminiModelRole    = "model"
	geminiUserRole     = "user"
)

// GeminiGateway sends the conversation to Google's Gemini API as a chat
// session.
type GeminiGateway struct {
	client *genai.Client
	model  string
}

func NewGeminiGateway(ctx context.Context, apiKey, model string) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGateway{client: client, model: model}, nil
}

func (g *GeminiGateway) Complete(ctx context.Context, msgs []domain.CompletionMessage) (string, error) {
	system, history, last := toGeminiConversation(msgs)
	if last == "" {
		return "", fmt.Errorf("gemini: %w: no user message to send", domain.ErrUpstream)
	}

	// GenerativeModel is mutated below, so each call gets its own.
	model := g.client.GenerativeModel(g.model)
	if system != nil {
		model.SystemInstruction = system
	}
	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", upstream("gemini", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w: response has no candidates", domain.ErrUpstream)
	}
	return extractText(resp), nil
}

func (g *GeminiGateway) Close() error {
	return g.client.Close()
}

// toGeminiConversation splits msgs into a system instruction, the prior turns
// and the final user text. Assistant turns use Gemini's "model" role.
func toGeminiConversation(msgs []domain.CompletionMessage) (*genai.Content, []*genai.Content, string) {
	var (
		systemParts []genai.Part
		turns       []*genai.Content
	)
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, genai.Text(m.Content))
		case domain.RoleAssistant:
			turns = append(turns, &genai.Content{Role: geminiModelRole, Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: geminiUserRole, Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}

	if n := len(turns); n > 0 && turns[n-1].Role == geminiUserRole {
		last := string(turns[n-1].Parts[0].(genai.Text))
		return system, turns[:n-1], last
	}
	return system, turns, ""
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}
