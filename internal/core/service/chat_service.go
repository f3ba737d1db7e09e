package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kubrck/Promptly/internal/core/domain"
	"github.com/kubrck/Promptly/internal/core/ports"
	"github.com/kubrck/Promptly/internal/pkg/metrics"
)

const (
	// SystemInstruction precedes the history of every completion request.
	SystemInstruction = "You are a helpful AI assistant."
	// FallbackReply is stored when the gateway answers without content.
	FallbackReply = "No response from AI"
)

type ChatService struct {
	repo    ports.ChatRepository
	gateway ports.CompletionGateway
	logger  zerolog.Logger
	now     func() time.Time
}

func NewChatService(repo ports.ChatRepository, gateway ports.CompletionGateway, logger zerolog.Logger) *ChatService {
	return &ChatService{
		repo:    repo,
		gateway: gateway,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create starts an empty chat. Blank titles fall back to domain.DefaultChatTitle.
func (s *ChatService) Create(ctx context.Context, ownerID, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultChatTitle
	}

	now := s.now()
	chat, err := s.repo.Create(ctx, &domain.Chat{
		UserID:    ownerID,
		Title:     title,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to create chat")
		return nil, fmt.Errorf("create chat: %w", err)
	}

	metrics.ChatsCreatedTotal.Inc()
	s.logger.Info().Str("chat_id", chat.ID).Str("user_id", ownerID).Msg("chat created")
	return chat, nil
}

func (s *ChatService) List(ctx context.Context, ownerID string) ([]domain.ChatSummary, error) {
	chats, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *ChatService) Get(ctx context.Context, ownerID, chatID string) (*domain.Chat, error) {
	return s.repo.FindByID(ctx, ownerID, chatID)
}

func (s *ChatService) Delete(ctx context.Context, ownerID, chatID string) error {
	if err := s.repo.Delete(ctx, ownerID, chatID); err != nil {
		return err
	}
	metrics.ChatsDeletedTotal.Inc()
	s.logger.Info().Str("chat_id", chatID).Str("user_id", ownerID).Msg("chat deleted")
	return nil
}

// SendMessage runs one exchange: the user's message and the generated reply
// are persisted together, and only once the gateway has answered. A gateway
// failure leaves the stored chat untouched.
func (s *ChatService) SendMessage(ctx context.Context, ownerID, chatID, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", domain.ErrInvalidInput
	}

	chat, err := s.repo.FindByID(ctx, ownerID, chatID)
	if err != nil {
		return "", err
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: content, Timestamp: s.now()}
	history := append(append(make([]domain.Message, 0, len(chat.Messages)+1), chat.Messages...), userMsg)

	reply, err := s.gateway.Complete(ctx, buildCompletionRequest(history))
	if err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("completion failed")
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	assistantMsg := domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: s.now()}
	if err := s.repo.AppendMessages(ctx, ownerID, chatID, []domain.Message{userMsg, assistantMsg}, assistantMsg.Timestamp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	metrics.MessagesExchangedTotal.Inc()
	s.logger.Info().Str("chat_id", chatID).Int("messages", len(history)+1).Msg("exchange persisted")
	return reply, nil
}

// buildCompletionRequest prepends the system instruction to the history.
func buildCompletionRequest(history []domain.Message) []domain.CompletionMessage {
	out := make([]domain.CompletionMessage, 0, len(history)+1)
	out = append(out, domain.CompletionMessage{Role: domain.RoleSystem, Content: SystemInstruction})
	for _, m := range history {
		out = append(out, domain.CompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
