package ports

import (
	"context"

	"github.com/kubrck/Promptly/internal/core/domain"
)

type ChatService interface {
	Create(ctx context.Context, ownerID, title string) (*domain.Chat, error)
	List(ctx context.Context, ownerID string) ([]domain.ChatSummary, error)
	Get(ctx context.Context, ownerID, chatID string) (*domain.Chat, error)
	Delete(ctx context.Context, ownerID, chatID string) error
	// SendMessage appends the user's message and the generated reply, and
	// returns the reply text.
	SendMessage(ctx context.Context, ownerID, chatID, content string) (string, error)
}
