package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/repository"
)

// ChatService enforces the messaging business rules and fans completed
// actions out to conversation participants. The realtime protocol
// handler depends on this service, not on the repositories directly.
type ChatService struct {
	chat        repository.ChatRepository
	social      repository.SocialRepository
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger
}

func NewChatService(
	chat repository.ChatRepository,
	social repository.SocialRepository,
	broadcaster *broadcast.Broadcaster,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{chat: chat, social: social, broadcaster: broadcaster, logger: logger}
}

// CanSend checks that the conversation exists, the sender is a
// participant, and, for one-to-one conversations, that the recipient's
// block list and privacy policy permit messaging from the sender.
// Returns the loaded conversation on success so callers can reuse the
// participant list for fan-out.
func (s *ChatService) CanSend(ctx context.Context, senderID, conversationID string) (*domain.Conversation, error) {
	conv, err := s.chat.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(senderID) {
		return nil, domain.ErrNotParticipant
	}

	if conv.IsGroup {
		return conv, nil
	}

	recipientID, ok := conv.OtherParticipant(senderID)
	if !ok {
		return nil, domain.ErrRecipientNotFound
	}

	blocked, err := s.social.IsBlocked(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return nil, domain.ErrBlocked
	}

	policy, err := s.social.MessagePolicy(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("get message policy: %w", err)
	}
	switch policy {
	case domain.AllowEveryone:
		return conv, nil
	case domain.AllowFriends:
		friends, err := s.social.AreFriends(ctx, senderID, recipientID)
		if err != nil {
			return nil, fmt.Errorf("check friendship: %w", err)
		}
		if !friends {
			return nil, domain.ErrMessagingNotAllowed
		}
		return conv, nil
	default:
		return nil, domain.ErrMessagingNotAllowed
	}
}

// SendMessage validates, persists, and broadcasts a new message. The
// broadcast, tagged with the client's requestID, reaches every
// participant's live connections, the sender included; that envelope is
// the sender's acknowledgment.
func (s *ChatService) SendMessage(ctx context.Context, senderID, conversationID, requestID, content string) (*domain.Message, error) {
	conv, err := s.CanSend(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}

	msg, err := s.chat.CreateMessage(ctx, conversationID, senderID, content)
	if err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	env := domain.Envelope{
		Code:      domain.CodeNewMessage,
		Message:   "message delivered",
		Data:      msg,
		RequestID: requestID,
	}
	s.broadcaster.ToUsers(conv.ParticipantIDs, env)

	return msg, nil
}

// RevokeMessage marks a message revoked on behalf of its sender and
// notifies every participant. Only the original sender may revoke;
// anyone else gets domain.ErrNotMessageSender and the message is left
// untouched.
func (s *ChatService) RevokeMessage(ctx context.Context, userID, messageID string) error {
	msg, conv, err := s.chat.GetMessageBySender(ctx, messageID, userID)
	if err != nil {
		return err
	}

	if err := s.chat.RevokeMessage(ctx, msg.ID); err != nil {
		return fmt.Errorf("revoke message: %w", err)
	}

	s.broadcaster.ToUsers(conv.ParticipantIDs, domain.Envelope{
		Code:    domain.CodeRevoked,
		Message: "message revoked",
		Data: map[string]string{
			"conversationId": conv.ID,
			"messageId":      msg.ID,
		},
	})
	return nil
}

// MarkAsRead clears the caller's unread counter for the conversation,
// marks the other participants' messages read, and broadcasts a read
// receipt to the conversation.
func (s *ChatService) MarkAsRead(ctx context.Context, userID, conversationID string) error {
	if err := s.chat.DeleteUnreadCounters(ctx, userID, conversationID); err != nil {
		return err
	}

	conv, err := s.chat.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return domain.ErrNotParticipant
	}

	if err := s.chat.MarkConversationRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}

	s.broadcaster.ToUsers(conv.ParticipantIDs, domain.Envelope{
		Code:    domain.CodeRead,
		Message: "messages read",
		Data: map[string]any{
			"conversationId": conversationID,
			"userId":         userID,
		},
	})
	return nil
}

// MarkAsReadByIDs is the bulk variant: it marks the listed messages read
// and broadcasts one read receipt per affected conversation.
func (s *ChatService) MarkAsReadByIDs(ctx context.Context, userID string, messageIDs []string, conversationID string) error {
	if err := s.chat.DeleteUnreadCounters(ctx, userID, conversationID); err != nil {
		return err
	}

	if err := s.chat.MarkMessagesRead(ctx, messageIDs, userID); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	conversations, err := s.chat.ConversationsForMessages(ctx, messageIDs)
	if err != nil {
		return fmt.Errorf("load affected conversations: %w", err)
	}

	for _, conv := range conversations {
		s.broadcaster.ToUsers(conv.ParticipantIDs, domain.Envelope{
			Code:    domain.CodeRead,
			Message: "messages read",
			Data: map[string]any{
				"conversationId": conv.ID,
				"messageIds":     messageIDs,
				"userId":         userID,
			},
		})
	}
	return nil
}
