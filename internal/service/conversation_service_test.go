package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"medisense/internal/domain"
	"medisense/internal/repository"
)

type stubResolver struct {
	reply   string
	lastMsg string
	lastKey string
	calls   int
	during  func()
}

func (s *stubResolver) Resolve(_ context.Context, message, apiKey string) string {
	s.calls++
	s.lastMsg = message
	s.lastKey = apiKey
	if s.during != nil {
		s.during()
	}
	return s.reply
}

type failingMessageRepo struct {
	repository.MessageRepository
	err error
}

func (f failingMessageRepo) Create(context.Context, domain.ChatMessage) error {
	return f.err
}

func newTestConversationService(resolver Resolver) (*ConversationService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := NewConversationService(store.Conversations(), store.Messages(), resolver, nil, "hf_key", time.Hour, nil)
	return svc, store
}

func TestConversationServiceReply_PersistsBothTurns(t *testing.T) {
	resolver := &stubResolver{reply: "Rest and hydrate."}
	svc, _ := newTestConversationService(resolver)

	conv, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	userMsg, assistantMsg, err := svc.Reply(context.Background(), conv.ID, "  I have a fever  ")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if resolver.lastMsg != "I have a fever" || resolver.lastKey != "hf_key" {
		t.Fatalf("expected trimmed message and configured key, got %q %q", resolver.lastMsg, resolver.lastKey)
	}
	if !userMsg.IsUser || assistantMsg.IsUser {
		t.Fatalf("unexpected roles: user=%+v assistant=%+v", userMsg, assistantMsg)
	}
	if assistantMsg.Content != "Rest and hydrate." {
		t.Fatalf("unexpected assistant content %q", assistantMsg.Content)
	}
	if !assistantMsg.Timestamp.After(userMsg.Timestamp) {
		t.Fatalf("expected assistant timestamp after user timestamp")
	}

	history, err := svc.History(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ID != userMsg.ID || history[1].ID != assistantMsg.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestConversationServiceReply_Validation(t *testing.T) {
	svc, _ := newTestConversationService(&stubResolver{reply: "x"})
	conv, _ := svc.Start(context.Background())

	if _, _, err := svc.Reply(context.Background(), conv.ID, "   "); !errors.Is(err, ErrMessageInvalidInput) {
		t.Fatalf("expected ErrMessageInvalidInput, got %v", err)
	}
	if _, _, err := svc.Reply(context.Background(), "", "fever"); !errors.Is(err, ErrMessageInvalidInput) {
		t.Fatalf("expected ErrMessageInvalidInput, got %v", err)
	}
	if _, _, err := svc.Reply(context.Background(), "missing", "fever"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationServiceReply_ExpiredConversation(t *testing.T) {
	svc, _ := newTestConversationService(&stubResolver{reply: "x"})
	conv, _ := svc.Start(context.Background())

	svc.now = func() time.Time { return conv.ExpiresAt.Add(time.Second) }
	if _, _, err := svc.Reply(context.Background(), conv.ID, "fever"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for expired conversation, got %v", err)
	}
}

func TestConversationServiceReply_BusyWhileInFlight(t *testing.T) {
	resolver := &stubResolver{reply: "ok"}
	svc, _ := newTestConversationService(resolver)
	conv, _ := svc.Start(context.Background())

	var nestedErr error
	resolver.during = func() {
		resolver.during = nil
		_, _, nestedErr = svc.Reply(context.Background(), conv.ID, "another headache")
	}
	if _, _, err := svc.Reply(context.Background(), conv.ID, "headache"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if !errors.Is(nestedErr, ErrConversationBusy) {
		t.Fatalf("expected ErrConversationBusy for overlapping reply, got %v", nestedErr)
	}

	if _, _, err := svc.Reply(context.Background(), conv.ID, "headache again"); err != nil {
		t.Fatalf("expected guard released after reply, got %v", err)
	}
}

func TestConversationServiceReply_StoreFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	resolver := &stubResolver{reply: "x"}
	svc := NewConversationService(store.Conversations(), failingMessageRepo{err: errors.New("db down")}, resolver, nil, "", time.Hour, nil)
	conv, _ := svc.Start(context.Background())

	if _, _, err := svc.Reply(context.Background(), conv.ID, "fever"); err == nil {
		t.Fatalf("expected error when messages cannot be saved")
	}
	if resolver.calls != 0 {
		t.Fatalf("expected resolver not called when user message was not saved")
	}
}

func TestConversationServiceHistory_NotFound(t *testing.T) {
	svc, _ := newTestConversationService(&stubResolver{})
	if _, err := svc.History(context.Background(), "missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationService_NotConfigured(t *testing.T) {
	var svc *ConversationService
	if _, err := svc.Start(context.Background()); !errors.Is(err, ErrConversationServiceNotConfigured) {
		t.Fatalf("expected ErrConversationServiceNotConfigured, got %v", err)
	}

	svc = NewConversationService(nil, nil, nil, nil, "", 0, nil)
	if _, _, err := svc.Reply(context.Background(), "c1", "fever"); !errors.Is(err, ErrConversationServiceNotConfigured) {
		t.Fatalf("expected ErrConversationServiceNotConfigured, got %v", err)
	}
	if _, err := svc.History(context.Background(), "c1"); !errors.Is(err, ErrConversationServiceNotConfigured) {
		t.Fatalf("expected ErrConversationServiceNotConfigured, got %v", err)
	}
}
