package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medisense/internal/domain"
	"medisense/internal/repository"
)

var (
	ErrConversationServiceNotConfigured = errors.New("conversation service not configured")
	ErrConversationNotFound             = errors.New("conversation not found")
	ErrConversationBusy                 = errors.New("conversation has a reply in progress")
	ErrMessageInvalidInput              = errors.New("message invalid input")
)

const defaultConversationTTL = 24 * time.Hour

// Resolver es lo que la conversación necesita del pipeline de síntomas.
type Resolver interface {
	Resolve(ctx context.Context, message, apiKey string) string
}

// ConversationService guarda los turnos y serializa las respuestas de cada conversación.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	resolver      Resolver
	guard         InFlightGuard
	apiKey        string
	ttl           time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	resolver Resolver,
	guard InFlightGuard,
	apiKey string,
	ttl time.Duration,
	logger *zap.Logger,
) *ConversationService {
	if guard == nil {
		guard = NewMemoryInFlightGuard()
	}
	if ttl <= 0 {
		ttl = defaultConversationTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		resolver:      resolver,
		guard:         guard,
		apiKey:        apiKey,
		ttl:           ttl,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *ConversationService) configured() bool {
	return s != nil && s.conversations != nil && s.messages != nil && s.resolver != nil
}

// Start abre una conversación nueva con vencimiento ttl.
func (s *ConversationService) Start(ctx context.Context) (domain.Conversation, error) {
	if !s.configured() {
		return domain.Conversation{}, ErrConversationServiceNotConfigured
	}
	now := s.now()
	conversation := domain.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// Reply guarda el mensaje del usuario, resuelve la respuesta y la guarda.
// Un segundo Reply sobre la misma conversación mientras el primero sigue en curso devuelve ErrConversationBusy.
func (s *ConversationService) Reply(ctx context.Context, conversationID, content string) (domain.ChatMessage, domain.ChatMessage, error) {
	if !s.configured() {
		return domain.ChatMessage{}, domain.ChatMessage{}, ErrConversationServiceNotConfigured
	}
	conversationID = strings.TrimSpace(conversationID)
	content = strings.TrimSpace(content)
	if conversationID == "" || content == "" {
		return domain.ChatMessage{}, domain.ChatMessage{}, ErrMessageInvalidInput
	}

	if _, err := s.activeConversation(ctx, conversationID); err != nil {
		return domain.ChatMessage{}, domain.ChatMessage{}, err
	}

	release, ok := s.guard.Acquire(ctx, conversationID)
	if !ok {
		return domain.ChatMessage{}, domain.ChatMessage{}, ErrConversationBusy
	}
	defer release()

	userMsg := domain.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		IsUser:         true,
		Timestamp:      s.now(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return domain.ChatMessage{}, domain.ChatMessage{}, fmt.Errorf("save user message: %w", err)
	}

	reply := s.resolver.Resolve(ctx, content, s.apiKey)

	assistantMsg := domain.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        reply,
		IsUser:         false,
		Timestamp:      s.now(),
	}
	if !assistantMsg.Timestamp.After(userMsg.Timestamp) {
		assistantMsg.Timestamp = userMsg.Timestamp.Add(time.Microsecond)
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		s.logger.Error("save assistant message failed", zap.Error(err), zap.String("conversation_id", conversationID))
		return userMsg, domain.ChatMessage{}, fmt.Errorf("save assistant message: %w", err)
	}
	return userMsg, assistantMsg, nil
}

// History devuelve los mensajes en orden cronológico.
func (s *ConversationService) History(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	if !s.configured() {
		return nil, ErrConversationServiceNotConfigured
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, ErrConversationNotFound
	}
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return s.messages.ListByConversationID(ctx, conversationID)
}

func (s *ConversationService) activeConversation(ctx context.Context, id string) (domain.Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	if conversation.Expired(s.now()) {
		return domain.Conversation{}, ErrConversationNotFound
	}
	return conversation, nil
}
