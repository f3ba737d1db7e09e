package handler

import "time"

// --- Request / Response types ---

type createChatRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=8000"`
}

type messageView struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type chatResponse struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []messageView `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type chatSummaryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type chatEnvelope struct {
	Chat chatResponse `json:"chat"`
}

type chatListResponse struct {
	Chats []chatSummaryResponse `json:"chats"`
}

type sendMessageResponse struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}
