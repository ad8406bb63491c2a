package domain

import "time"

// NotificationType identifies what triggered a notification and which
// user setting gates it.
type NotificationType string

const (
	TypeLike              NotificationType = "like"
	TypeComment           NotificationType = "comment"
	TypeCommentLike       NotificationType = "comment_like"
	TypeFollow            NotificationType = "follow"
	TypeFriendRequest     NotificationType = "friend_request"
	TypeGroupInvite       NotificationType = "group_invite"
	TypeMessage           NotificationType = "message"
	TypeGroupJoinAccepted NotificationType = "group_join_accepted"
	TypeGroupJoinRejected NotificationType = "group_join_rejected"
	TypeNewPost           NotificationType = "new_post"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeLike, TypeComment, TypeCommentLike, TypeFollow, TypeFriendRequest,
		TypeGroupInvite, TypeMessage, TypeGroupJoinAccepted, TypeGroupJoinRejected,
		TypeNewPost:
		return true
	}
	return false
}

// Notification is the persisted record pushed to the target user's
// live connections after the queue handler creates it.
type Notification struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	SenderID    string           `json:"senderId"`
	Type        NotificationType `json:"type"`
	Message     *string          `json:"message,omitempty"`
	RedirectURL string           `json:"redirectUrl"`
	Read        bool             `json:"read"`
	Sender      *UserSummary     `json:"sender,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// NotificationSettings holds a user's per-type notification switches.
// A user without a persisted row gets DefaultNotificationSettings.
type NotificationSettings struct {
	PostComments       bool
	PostLikes          bool
	CommentLikes       bool
	NewFollower        bool
	FriendRequests     bool
	GroupInvites       bool
	DirectMessages     bool
	EmailNotifications bool
}

// DefaultNotificationSettings: everything enabled.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		PostComments:       true,
		PostLikes:          true,
		CommentLikes:       true,
		NewFollower:        true,
		FriendRequests:     true,
		GroupInvites:       true,
		DirectMessages:     true,
		EmailNotifications: true,
	}
}

// Allows reports whether the settings permit a notification of type t.
// new_post fan-out is not gated by settings; unknown types are dropped.
func (s NotificationSettings) Allows(t NotificationType) bool {
	switch t {
	case TypeNewPost:
		return true
	case TypeLike:
		return s.PostLikes
	case TypeComment:
		return s.PostComments
	case TypeCommentLike:
		return s.CommentLikes
	case TypeFollow:
		return s.NewFollower
	case TypeFriendRequest:
		return s.FriendRequests
	case TypeGroupInvite, TypeGroupJoinAccepted, TypeGroupJoinRejected:
		return s.GroupInvites
	case TypeMessage:
		return s.DirectMessages
	}
	return false
}

// NotificationJob is the payload enqueued on the notification queue.
type NotificationJob struct {
	UserID      string           `json:"userId"`
	SenderID    string           `json:"senderId"`
	Type        NotificationType `json:"type"`
	Message     *string          `json:"message,omitempty"`
	RedirectURL string           `json:"redirectUrl"`
}

func (j *NotificationJob) Validate() error {
	if j.UserID == "" {
		return ErrInvalidRecipient
	}
	if !j.Type.IsValid() {
		return ErrInvalidNotificationType
	}
	return nil
}

// NewPostJob is the payload for the new-post fan-out queue: the handler
// resolves the author's followers and enqueues one notification each.
type NewPostJob struct {
	PostID   string `json:"postId"`
	AuthorID string `json:"authorId"`
}
