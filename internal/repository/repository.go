// Package repository defines the persistence and read-model operations
// the realtime core consumes. The pgx implementations live in the
// pg_*.go files; tests use hand-written in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/twokhq/realtime-core/internal/domain"
)

// ChatRepository covers conversation lookups, message persistence, and
// read-state bookkeeping used by the realtime protocol handler.
type ChatRepository interface {
	// GetConversation loads a conversation with its participant ids.
	// Returns domain.ErrConversationNotFound when absent.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// CreateMessage persists a new message and bumps the conversation's
	// updated_at so conversation lists sort correctly.
	CreateMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error)

	// GetMessageBySender loads a message only if senderID authored it,
	// together with its conversation. Returns domain.ErrNotMessageSender
	// when the message does not exist or belongs to someone else; the
	// two cases are deliberately indistinguishable to the caller.
	GetMessageBySender(ctx context.Context, messageID, senderID string) (*domain.Message, *domain.Conversation, error)

	// RevokeMessage marks the message revoked, detaches its sticker, and
	// deletes attached files. Content stays in place; revocation is a
	// display-layer concern.
	RevokeMessage(ctx context.Context, messageID string) error

	// DeleteUnreadCounters clears the unread counter row for the
	// user/conversation pair. Missing rows are not an error.
	DeleteUnreadCounters(ctx context.Context, userID, conversationID string) error

	// MarkConversationRead marks every message in the conversation not
	// sent by readerID as read.
	MarkConversationRead(ctx context.Context, conversationID, readerID string) error

	// MarkMessagesRead marks the listed messages as read, excluding any
	// sent by readerID.
	MarkMessagesRead(ctx context.Context, messageIDs []string, readerID string) error

	// ConversationsForMessages returns the conversations containing any
	// of the listed messages, with participants loaded.
	ConversationsForMessages(ctx context.Context, messageIDs []string) ([]*domain.Conversation, error)
}

// SocialRepository is the read-model for relationship checks: privacy,
// blocks, friendships, followers, and group membership.
type SocialRepository interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	// IsBlocked reports whether a block exists in either direction.
	IsBlocked(ctx context.Context, userID, otherID string) (bool, error)
	// MessagePolicy returns the user's direct-message privacy setting;
	// users without a persisted row default to AllowEveryone.
	MessagePolicy(ctx context.Context, userID string) (domain.AllowMessagePolicy, error)
	GroupMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// NotificationRepository persists notifications and reads the per-user
// notification switches.
type NotificationRepository interface {
	// RecentExists reports whether a notification with the same
	// (userID, type, redirectURL) was created at or after since.
	// Backs the 24-hour deduplication window.
	RecentExists(ctx context.Context, userID string, typ domain.NotificationType, redirectURL string, since time.Time) (bool, error)

	Create(ctx context.Context, n *domain.Notification) error

	// Settings returns the user's notification switches, or
	// domain.ErrNotFound when the user never saved any.
	Settings(ctx context.Context, userID string) (domain.NotificationSettings, error)
}

// ScoreRepository maintains the weekly post-interaction aggregates.
type ScoreRepository interface {
	// UpsertScore increments the aggregate row for the
	// (postID, weekStart, weekEnd) key, creating it when absent.
	UpsertScore(ctx context.Context, postID string, weekStart, weekEnd time.Time, delta int) error
}
