package domain

import "errors"

// Sentinel errors used throughout the application.
// HTTP handlers translate these via a single mapError function; the
// realtime handler translates them to protocol error envelopes.
var (
	ErrNotFound                = errors.New("not found")
	ErrConversationNotFound    = errors.New("conversation does not exist")
	ErrNotParticipant          = errors.New("not a participant of this conversation")
	ErrRecipientNotFound       = errors.New("recipient not found")
	ErrMessagingNotAllowed     = errors.New("recipient does not allow messages from you")
	ErrBlocked                 = errors.New("messaging is blocked between these users")
	ErrNotMessageSender        = errors.New("only the sender may revoke this message")
	ErrInvalidRecipient        = errors.New("recipient must not be empty")
	ErrInvalidNotificationType = errors.New("unknown notification type")
	ErrInvalidPostID           = errors.New("post id must not be empty")
	ErrInvalidInteraction      = errors.New("unknown interaction type")
	ErrInvalidMailSubject      = errors.New("mail subject must not be empty")
	ErrInvalidCommentJob       = errors.New("comment event is missing required fields")
	ErrInvalidVisibility       = errors.New("unknown post visibility")
	ErrQueueClosed             = errors.New("queue is closed")
)
