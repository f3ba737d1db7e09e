package handler

import (
	"github.com/kubrck/Promptly/internal/core/domain"
)

// --- Domain → Response ---

func toChatResponse(c *domain.Chat) chatResponse {
	msgs := make([]messageView, 0, len(c.Messages))
	for _, m := range c.Messages {
		msgs = append(msgs, messageView{Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp})
	}
	return chatResponse{
		ID:        c.ID,
		Title:     c.Title,
		Messages:  msgs,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toChatListResponse(chats []domain.ChatSummary) chatListResponse {
	out := make([]chatSummaryResponse, 0, len(chats))
	for _, c := range chats {
		out = append(out, chatSummaryResponse{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return chatListResponse{Chats: out}
}
