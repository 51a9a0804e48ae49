package memory

import (
	"context"
	"sync"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu       sync.RWMutex
	messages map[string][]domain.ChatMessage
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		messages: make(map[string][]domain.ChatMessage),
	}
}

// Append stores one chat message.
func (s *ChatStore) Append(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ChatID] = append(s.messages[msg.ChatID], *msg)
	return nil
}

// List returns stored messages for a chat, oldest first.
func (s *ChatStore) List(_ context.Context, chatID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[chatID]
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
