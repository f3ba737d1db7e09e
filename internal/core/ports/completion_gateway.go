package ports

import (
	"context"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// CompletionGateway produces assistant text from an ordered conversation.
// Failures are reported wrapping domain.ErrUpstream. An empty string with a
// nil error means the provider answered without content.
type CompletionGateway interface {
	Complete(ctx context.Context, messages []domain.CompletionMessage) (string, error)
}
