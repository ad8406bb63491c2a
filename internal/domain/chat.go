package domain

import "time"

// Conversation is the chat read-model: identity, group flag, and the
// participant user ids. Loaded when validating and fanning out actions.
type Conversation struct {
	ID             string
	IsGroup        bool
	ParticipantIDs []string
}

// OtherParticipant returns the first participant that is not userID.
// Only meaningful for one-to-one conversations.
func (c *Conversation) OtherParticipant(userID string) (string, bool) {
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id, true
		}
	}
	return "", false
}

// HasParticipant reports whether userID is a member of the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is a persisted chat message as broadcast to participants.
type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversationId"`
	SenderID       string       `json:"senderId"`
	Content        string       `json:"content"`
	StickerID      *string      `json:"stickerId,omitempty"`
	IsRead         bool         `json:"isRead"`
	IsRevoked      bool         `json:"isRevoked"`
	Sender         *UserSummary `json:"sender,omitempty"`
	SentAt         time.Time    `json:"sentAt"`
}

// UserSummary is the sender projection attached to broadcast messages.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// AllowMessagePolicy is a user's direct-message privacy setting.
type AllowMessagePolicy string

const (
	AllowEveryone AllowMessagePolicy = "EVERYONE"
	AllowFriends  AllowMessagePolicy = "FRIENDS"
	AllowNobody   AllowMessagePolicy = "NOBODY"
)
