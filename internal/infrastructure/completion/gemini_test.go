package completion

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubrck/Promptly/internal/core/domain"
)

func TestToGeminiConversation(t *testing.T) {
	system, history, last := toGeminiConversation(sampleConversation)

	require.NotNil(t, system)
	assert.Equal(t, []genai.Part{genai.Text("You are a helpful AI assistant.")}, system.Parts)

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, genai.Text("hi"), history[1].Parts[0])

	assert.Equal(t, "how are you?", last)
}

func TestToGeminiConversation_NoTrailingUserTurn(t *testing.T) {
	_, history, last := toGeminiConversation([]domain.CompletionMessage{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi"},
	})

	assert.Empty(t, last)
	assert.Len(t, history, 2)
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("hi "), genai.Text("there")}}},
			{Content: nil},
		},
	}
	assert.Equal(t, "hi there", extractText(resp))
}
