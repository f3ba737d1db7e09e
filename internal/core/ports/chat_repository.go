package ports

import (
	"context"
	"time"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// ChatRepository defines persistence for chats. Every lookup is scoped by
// owner; a chat owned by someone else is reported as domain.ErrChatNotFound.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	// ListByOwner returns summaries ordered by UpdatedAt, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ChatSummary, error)
	FindByID(ctx context.Context, ownerID, chatID string) (*domain.Chat, error)
	Delete(ctx context.Context, ownerID, chatID string) error
	// AppendMessages atomically appends msgs in order and sets UpdatedAt.
	AppendMessages(ctx context.Context, ownerID, chatID string, msgs []domain.Message, updatedAt time.Time) error
}
