package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twokhq/realtime-core/internal/domain"
)

// MockChatRepository is a hand-written, in-memory ChatRepository used in
// unit tests. No mock-generation library needed.
type MockChatRepository struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	messages      map[string]*domain.Message
	unread        map[string]struct{} // userID|conversationID

	// Optional error overrides, set in tests to simulate failure paths.
	CreateMessageErr error
	GetErr           error
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string]*domain.Message),
		unread:        make(map[string]struct{}),
	}
}

// AddConversation seeds a conversation for a test scenario.
func (m *MockChatRepository) AddConversation(c *domain.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.ID] = c
}

// AddMessage seeds an existing message.
func (m *MockChatRepository) AddMessage(msg *domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *msg
	m.messages[msg.ID] = &clone
}

// MessageByID exposes stored message state for assertions.
func (m *MockChatRepository) MessageByID(id string) (domain.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[id]
	if !ok {
		return domain.Message{}, false
	}
	return *msg, true
}

// MessageCount exposes how many messages were persisted.
func (m *MockChatRepository) MessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// SetUnread seeds an unread counter row.
func (m *MockChatRepository) SetUnread(userID, conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unread[userID+"|"+conversationID] = struct{}{}
}

// HasUnread reports whether the unread counter row still exists.
func (m *MockChatRepository) HasUnread(userID, conversationID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.unread[userID+"|"+conversationID]
	return ok
}

func (m *MockChatRepository) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockChatRepository) CreateMessage(_ context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	if m.CreateMessageErr != nil {
		return nil, m.CreateMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		SentAt:         time.Now().UTC(),
	}
	m.messages[msg.ID] = msg
	clone := *msg
	return &clone, nil
}

func (m *MockChatRepository) GetMessageBySender(_ context.Context, messageID, senderID string) (*domain.Message, *domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[messageID]
	if !ok || msg.SenderID != senderID {
		return nil, nil, domain.ErrNotMessageSender
	}
	c, ok := m.conversations[msg.ConversationID]
	if !ok {
		return nil, nil, domain.ErrConversationNotFound
	}
	msgClone, cClone := *msg, *c
	return &msgClone, &cClone, nil
}

func (m *MockChatRepository) RevokeMessage(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[messageID]; ok {
		msg.IsRevoked = true
		msg.StickerID = nil
	}
	return nil
}

func (m *MockChatRepository) DeleteUnreadCounters(_ context.Context, userID, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.unread, userID+"|"+conversationID)
	return nil
}

func (m *MockChatRepository) MarkConversationRead(_ context.Context, conversationID, readerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *MockChatRepository) MarkMessagesRead(_ context.Context, messageIDs []string, readerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range messageIDs {
		if msg, ok := m.messages[id]; ok && msg.SenderID != readerID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *MockChatRepository) ConversationsForMessages(_ context.Context, messageIDs []string) ([]*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []*domain.Conversation
	for _, id := range messageIDs {
		msg, ok := m.messages[id]
		if !ok {
			continue
		}
		if _, dup := seen[msg.ConversationID]; dup {
			continue
		}
		seen[msg.ConversationID] = struct{}{}
		if c, ok := m.conversations[msg.ConversationID]; ok {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

var _ ChatRepository = (*MockChatRepository)(nil)
