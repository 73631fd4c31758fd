package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"medisense/internal/domain"
)

// MemoryStore implementa ambos repositorios en memoria; se usa cuando no hay DATABASE_URL.
// Las conversaciones vencidas se eliminan junto con sus mensajes al leerlas o al crear una nueva.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
	messages      map[string][]domain.ChatMessage
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.ChatMessage),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// pruneExpiredLocked requiere mu tomado en escritura.
func (s *MemoryStore) pruneExpiredLocked(now time.Time) {
	for id, conversation := range s.conversations {
		if conversation.Expired(now) {
			delete(s.conversations, id)
			delete(s.messages, id)
		}
	}
}

// Conversations expone el store como ConversationRepository.
func (s *MemoryStore) Conversations() ConversationRepository {
	return memoryConversations{s}
}

// Messages expone el store como MessageRepository.
func (s *MemoryStore) Messages() MessageRepository {
	return memoryMessages{s}
}

type memoryConversations struct{ s *MemoryStore }

func (m memoryConversations) Create(_ context.Context, conversation domain.Conversation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.pruneExpiredLocked(m.s.now())
	m.s.conversations[conversation.ID] = conversation
	return nil
}

func (m memoryConversations) GetByID(_ context.Context, id string) (domain.Conversation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	conversation, ok := m.s.conversations[id]
	if !ok {
		return domain.Conversation{}, ErrNotFound
	}
	if conversation.Expired(m.s.now()) {
		delete(m.s.conversations, id)
		delete(m.s.messages, id)
		return domain.Conversation{}, ErrNotFound
	}
	return conversation, nil
}

type memoryMessages struct{ s *MemoryStore }

func (m memoryMessages) Create(_ context.Context, message domain.ChatMessage) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.messages[message.ConversationID] = append(m.s.messages[message.ConversationID], message)
	return nil
}

func (m memoryMessages) ListByConversationID(_ context.Context, conversationID string) ([]domain.ChatMessage, error) {
	m.s.mu.RLock()
	out := make([]domain.ChatMessage, len(m.s.messages[conversationID]))
	copy(out, m.s.messages[conversationID])
	m.s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
