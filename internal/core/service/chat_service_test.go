package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kubrck/Promptly/internal/core/domain"
)

// memChatRepo is an in-memory ports.ChatRepository scoped by owner.
type memChatRepo struct {
	chats     map[string]*domain.Chat
	seq       int
	appendErr error
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[string]*domain.Chat)}
}

func cloneChat(c *domain.Chat) *domain.Chat {
	out := *c
	out.Messages = append([]domain.Message(nil), c.Messages...)
	return &out
}

func (r *memChatRepo) Create(_ context.Context, chat *domain.Chat) (*domain.Chat, error) {
	r.seq++
	stored := cloneChat(chat)
	stored.ID = "c" + strconv.Itoa(r.seq)
	r.chats[stored.ID] = stored
	return cloneChat(stored), nil
}

func (r *memChatRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.ChatSummary, error) {
	out := []domain.ChatSummary{}
	for _, c := range r.chats {
		if c.UserID != ownerID {
			continue
		}
		out = append(out, domain.ChatSummary{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memChatRepo) FindByID(_ context.Context, ownerID, chatID string) (*domain.Chat, error) {
	c, ok := r.chats[chatID]
	if !ok || c.UserID != ownerID {
		return nil, domain.ErrChatNotFound
	}
	return cloneChat(c), nil
}

func (r *memChatRepo) Delete(_ context.Context, ownerID, chatID string) error {
	c, ok := r.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrChatNotFound
	}
	delete(r.chats, chatID)
	return nil
}

func (r *memChatRepo) AppendMessages(_ context.Context, ownerID, chatID string, msgs []domain.Message, updatedAt time.Time) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	c, ok := r.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrChatNotFound
	}
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = updatedAt
	return nil
}

type stubGateway struct {
	reply    string
	err      error
	requests [][]domain.CompletionMessage
}

func (g *stubGateway) Complete(_ context.Context, msgs []domain.CompletionMessage) (string, error) {
	g.requests = append(g.requests, msgs)
	return g.reply, g.err
}

// tickingClock advances one second per call so timestamps are strictly ordered.
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newChatSvc(repo *memChatRepo, gw *stubGateway) *ChatService {
	svc := NewChatService(repo, gw, zerolog.Nop())
	svc.now = tickingClock()
	return svc
}

func TestChatService_Create_DefaultTitle(t *testing.T) {
	svc := newChatSvc(newMemChatRepo(), &stubGateway{})

	chat, err := svc.Create(context.Background(), "u1", "   ")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if chat.Title != domain.DefaultChatTitle {
		t.Fatalf("expected default title, got %q", chat.Title)
	}
	if len(chat.Messages) != 0 {
		t.Fatalf("new chat must be empty, got %d messages", len(chat.Messages))
	}

	named, _ := svc.Create(context.Background(), "u1", "Trip ideas")
	if named.Title != "Trip ideas" {
		t.Fatalf("unexpected title %q", named.Title)
	}
}

func TestChatService_SendMessage_AppendsExchange(t *testing.T) {
	repo := newMemChatRepo()
	gw := &stubGateway{reply: "hi there"}
	svc := newChatSvc(repo, gw)

	chat, _ := svc.Create(context.Background(), "u1", "")
	before := repo.chats[chat.ID].UpdatedAt

	reply, err := svc.SendMessage(context.Background(), "u1", chat.ID, "hello")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("unexpected reply %q", reply)
	}

	stored := repo.chats[chat.ID]
	if len(stored.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(stored.Messages))
	}
	if stored.Messages[0].Role != domain.RoleUser || stored.Messages[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", stored.Messages[0])
	}
	if stored.Messages[1].Role != domain.RoleAssistant || stored.Messages[1].Content != "hi there" {
		t.Fatalf("unexpected second message: %+v", stored.Messages[1])
	}
	if !stored.Messages[0].Timestamp.Before(stored.Messages[1].Timestamp) {
		t.Fatalf("user message must precede the reply")
	}
	if !stored.UpdatedAt.After(before) {
		t.Fatalf("updated_at did not advance")
	}
}

func TestChatService_SendMessage_BlankContent(t *testing.T) {
	repo := newMemChatRepo()
	gw := &stubGateway{reply: "hi there"}
	svc := newChatSvc(repo, gw)

	chat, _ := svc.Create(context.Background(), "u1", "")
	if _, err := svc.SendMessage(context.Background(), "u1", chat.ID, " \n "); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(gw.requests) != 0 {
		t.Fatalf("gateway must not be called for blank content")
	}
	if len(repo.chats[chat.ID].Messages) != 0 {
		t.Fatalf("blank content must not be stored")
	}
}

func TestChatService_SendMessage_RequestCarriesHistory(t *testing.T) {
	repo := newMemChatRepo()
	gw := &stubGateway{reply: "first"}
	svc := newChatSvc(repo, gw)

	chat, _ := svc.Create(context.Background(), "u1", "")
	_, _ = svc.SendMessage(context.Background(), "u1", chat.ID, "one")
	gw.reply = "second"
	_, _ = svc.SendMessage(context.Background(), "u1", chat.ID, "two")

	req := gw.requests[1]
	want := []domain.CompletionMessage{
		{Role: domain.RoleSystem, Content: SystemInstruction},
		{Role: domain.RoleUser, Content: "one"},
		{Role: domain.RoleAssistant, Content: "first"},
		{Role: domain.RoleUser, Content: "two"},
	}
	if len(req) != len(want) {
		t.Fatalf("expected %d request messages, got %d", len(want), len(req))
	}
	for i := range want {
		if req[i] != want[i] {
			t.Fatalf("request[%d] = %+v, want %+v", i, req[i], want[i])
		}
	}
	if got := len(repo.chats[chat.ID].Messages); got != 4 {
		t.Fatalf("expected 4 stored messages, got %d", got)
	}
}

func TestChatService_SendMessage_GatewayFailureLeavesChatUnchanged(t *testing.T) {
	repo := newMemChatRepo()
	gw := &stubGateway{reply: "ok"}
	svc := newChatSvc(repo, gw)

	chat, _ := svc.Create(context.Background(), "u1", "")
	_, _ = svc.SendMessage(context.Background(), "u1", chat.ID, "hello")
	snapshot := cloneChat(repo.chats[chat.ID])

	gw.err = errors.Join(domain.ErrUpstream, errors.New("timeout"))
	_, err := svc.SendMessage(context.Background(), "u1", chat.ID, "again")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	after := repo.chats[chat.ID]
	if len(after.Messages) != len(snapshot.Messages) {
		t.Fatalf("messages changed after failed completion: %d -> %d", len(snapshot.Messages), len(after.Messages))
	}
	if !after.UpdatedAt.Equal(snapshot.UpdatedAt) {
		t.Fatalf("updated_at changed after failed completion")
	}
}

func TestChatService_SendMessage_EmptyReplyFallsBack(t *testing.T) {
	repo := newMemChatRepo()
	svc := newChatSvc(repo, &stubGateway{reply: "  "})

	chat, _ := svc.Create(context.Background(), "u1", "")
	reply, err := svc.SendMessage(context.Background(), "u1", chat.ID, "hello")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if reply != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
	if got := repo.chats[chat.ID].Messages[1].Content; got != FallbackReply {
		t.Fatalf("stored reply = %q", got)
	}
}

func TestChatService_SendMessage_PersistFailure(t *testing.T) {
	repo := newMemChatRepo()
	svc := newChatSvc(repo, &stubGateway{reply: "hi"})

	chat, _ := svc.Create(context.Background(), "u1", "")
	repo.appendErr = errors.New("write conflict")

	if _, err := svc.SendMessage(context.Background(), "u1", chat.ID, "hello"); err == nil {
		t.Fatalf("expected error when persisting fails")
	}
}

func TestChatService_Ownership(t *testing.T) {
	repo := newMemChatRepo()
	gw := &stubGateway{reply: "hi"}
	svc := newChatSvc(repo, gw)

	chat, _ := svc.Create(context.Background(), "owner", "")

	if _, err := svc.Get(context.Background(), "intruder", chat.ID); err != domain.ErrChatNotFound {
		t.Fatalf("Get: expected ErrChatNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "intruder", chat.ID); err != domain.ErrChatNotFound {
		t.Fatalf("Delete: expected ErrChatNotFound, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), "intruder", chat.ID, "hi"); err != domain.ErrChatNotFound {
		t.Fatalf("SendMessage: expected ErrChatNotFound, got %v", err)
	}
	if len(gw.requests) != 0 {
		t.Fatalf("gateway must not be called for a foreign chat")
	}
	if _, ok := repo.chats[chat.ID]; !ok {
		t.Fatalf("foreign delete removed the chat")
	}
}

func TestChatService_List_OwnChatsMostRecentFirst(t *testing.T) {
	repo := newMemChatRepo()
	svc := newChatSvc(repo, &stubGateway{reply: "hi"})

	older, _ := svc.Create(context.Background(), "u1", "older")
	newer, _ := svc.Create(context.Background(), "u1", "newer")
	_, _ = svc.Create(context.Background(), "u2", "someone else")

	// touching the older chat moves it to the top
	_, _ = svc.SendMessage(context.Background(), "u1", older.ID, "bump")

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(list))
	}
	if list[0].ID != older.ID || list[1].ID != newer.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestChatService_Scenario(t *testing.T) {
	repo := newMemChatRepo()
	svc := newChatSvc(repo, &stubGateway{reply: "hi there"})
	ctx := context.Background()

	chat, err := svc.Create(ctx, "u1", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SendMessage(ctx, "u1", chat.ID, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	got, err := svc.Get(ctx, "u1", chat.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Messages) != 2 ||
		got.Messages[0].Role != domain.RoleUser || got.Messages[0].Content != "hello" ||
		got.Messages[1].Role != domain.RoleAssistant || got.Messages[1].Content != "hi there" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}

	if err := svc.Delete(ctx, "u1", chat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", chat.ID); err != domain.ErrChatNotFound {
		t.Fatalf("expected ErrChatNotFound after delete, got %v", err)
	}
}
