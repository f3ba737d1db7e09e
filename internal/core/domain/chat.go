package domain

import (
	"errors"
	"time"
)

// DefaultChatTitle is applied when a chat is created without a title.
const DefaultChatTitle = "New Chat"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrUpstream     = errors.New("completion service failed")
)

// Message is a single immutable entry of a chat. Only user and assistant
// messages are ever stored.
type Message struct {
	Role      Role      `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Chat is a conversation owned by exactly one user. Messages are kept in
// append order.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatSummary is the list projection of a chat, without messages.
type ChatSummary struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompletionMessage is one role/content pair sent to the completion gateway.
type CompletionMessage struct {
	Role    Role
	Content string
}
