package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/registry"
)

// frame is the inbound client envelope. Fields beyond action are
// action-specific; absent ones decode to zero values and are validated
// per action.
type frame struct {
	Action         string   `json:"action"`
	Token          string   `json:"token,omitempty"`
	ConversationID string   `json:"conversationId,omitempty"`
	Content        string   `json:"content,omitempty"`
	MessageID      string   `json:"messageId,omitempty"`
	MessageIDs     []string `json:"messageIds,omitempty"`
	RequestID      string   `json:"requestId,omitempty"`
}

// session is the per-connection protocol state machine. Frames arrive
// from a single read loop and close runs after that loop exits, so the
// fields need no locking.
type session struct {
	h      *Handler
	connID string
	sender registry.Sender
	logger *zap.Logger

	// conn is nil until the client authenticates.
	conn *registry.Conn
}

func (h *Handler) newSession(connID string, sender registry.Sender, logger *zap.Logger) *session {
	return &session{
		h:      h,
		connID: connID,
		sender: sender,
		logger: logger.With(zap.String("conn_id", connID)),
	}
}

// challenge asks the client to authenticate. Sent on connect and in
// reply to any action attempted before auth.
func (s *session) challenge() {
	s.reply(domain.Envelope{Code: domain.CodeAuthRequired, Message: "authentication required"})
}

func (s *session) handleFrame(ctx context.Context, raw []byte) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		s.reply(domain.Envelope{Code: domain.CodeInvalidPayload, Message: "malformed frame"})
		return
	}

	if f.Action == "auth" {
		s.handleAuth(f)
		return
	}

	if s.conn == nil {
		s.challenge()
		return
	}

	// The credential snapshot taken at auth time is re-checked before
	// every action, so a token that expires mid-session stops working
	// without waiting for the connection to cycle.
	if _, err := s.h.verifier.Verify(s.conn.Token); err != nil {
		s.reply(domain.Envelope{Code: domain.CodeAuthInvalid, Message: "authentication failed"})
		return
	}

	switch f.Action {
	case "sendMessage":
		s.handleSendMessage(ctx, f)
	case "revokeMessage":
		s.handleRevokeMessage(ctx, f)
	case "markAsRead":
		s.handleMarkAsRead(ctx, f)
	case "markAsReadByIds":
		s.handleMarkAsReadByIDs(ctx, f)
	default:
		s.reply(domain.Envelope{Code: domain.CodeInvalidPayload, Message: "unknown action"})
	}
}

func (s *session) handleAuth(f frame) {
	identity, err := s.h.verifier.Verify(f.Token)
	if err != nil {
		s.reply(domain.Envelope{Code: domain.CodeAuthInvalid, Message: "authentication failed"})
		return
	}

	if s.conn != nil {
		// Re-auth on a live session refreshes the credential snapshot.
		s.conn.Token = f.Token
		s.conn.ExpiresAt = identity.ExpiresAt
		s.reply(domain.Envelope{Code: domain.CodeOK, Message: "authenticated"})
		return
	}

	wasOnline := s.h.reg.IsOnline(identity.UserID)

	s.conn = &registry.Conn{
		ID:          s.connID,
		UserID:      identity.UserID,
		Token:       f.Token,
		ConnectedAt: time.Now(),
		ExpiresAt:   identity.ExpiresAt,
		Sender:      s.sender,
	}
	s.h.reg.Add(s.conn)
	s.reply(domain.Envelope{Code: domain.CodeOK, Message: "authenticated"})

	// Peers only hear about the offline→online transition. Extra
	// connections from the same user change nothing in their view.
	if !wasOnline {
		s.h.bcast.ToAll(domain.Envelope{
			Code:    domain.CodeUserOnline,
			Message: "user online",
			Data:    map[string]string{"userId": identity.UserID},
		}, []string{identity.UserID})
	}

	s.logger.Info("connection authenticated",
		zap.String("user_id", identity.UserID),
		zap.Bool("was_online", wasOnline),
	)
}

func (s *session) handleSendMessage(ctx context.Context, f frame) {
	if f.ConversationID == "" || f.RequestID == "" || f.Content == "" {
		s.reply(domain.Envelope{
			Code:      domain.CodeInvalidPayload,
			Message:   "conversationId, requestId and content are required",
			RequestID: f.RequestID,
		})
		return
	}

	// The broadcast carries the requestId back to the sender's own
	// connections; there is no separate success reply here.
	if _, err := s.h.chat.SendMessage(ctx, s.conn.UserID, f.ConversationID, f.RequestID, f.Content); err != nil {
		s.reject(err, f.RequestID)
	}
}

func (s *session) handleRevokeMessage(ctx context.Context, f frame) {
	if f.MessageID == "" {
		s.reply(domain.Envelope{Code: domain.CodeInvalidPayload, Message: "messageId is required"})
		return
	}

	err := s.h.chat.RevokeMessage(ctx, s.conn.UserID, f.MessageID)
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrNotMessageSender) {
		s.reply(domain.Envelope{Code: domain.CodeRevokeDenied, Message: "only the sender can revoke a message"})
		return
	}
	s.reject(err, "")
}

func (s *session) handleMarkAsRead(ctx context.Context, f frame) {
	if f.ConversationID == "" {
		s.reply(domain.Envelope{Code: domain.CodeInvalidPayload, Message: "conversationId is required"})
		return
	}

	if err := s.h.chat.MarkAsRead(ctx, s.conn.UserID, f.ConversationID); err != nil {
		s.reject(err, "")
	}
}

func (s *session) handleMarkAsReadByIDs(ctx context.Context, f frame) {
	if len(f.MessageIDs) == 0 {
		s.reply(domain.Envelope{Code: domain.CodeInvalidPayload, Message: "messageIds is required"})
		return
	}

	if err := s.h.chat.MarkAsReadByIDs(ctx, s.conn.UserID, f.MessageIDs, f.ConversationID); err != nil {
		s.reject(err, "")
	}
}

// close runs once the read loop exits. The presence announcement is
// held back for the debounce window so a page navigation's quick
// close-and-reconnect never reaches peers as an offline flap.
func (s *session) close() {
	if s.conn == nil {
		return
	}

	userID := s.conn.UserID
	if stillOnline := s.h.reg.Remove(s.conn); stillOnline {
		return
	}

	reg, bcast := s.h.reg, s.h.bcast
	time.AfterFunc(s.h.presenceDebounce, func() {
		if reg.IsOnline(userID) {
			return
		}
		bcast.ToAll(domain.Envelope{
			Code:    domain.CodeUserOffline,
			Message: "user offline",
			Data:    map[string]string{"userId": userID},
		}, []string{userID})
	})
}

// reject maps a service error onto a protocol envelope. Business-rule
// denials surface their reason; anything else is an opaque internal
// error.
func (s *session) reject(err error, requestID string) {
	switch {
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrBlocked),
		errors.Is(err, domain.ErrMessagingNotAllowed),
		errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrRecipientNotFound),
		errors.Is(err, domain.ErrNotFound):
		s.reply(domain.Envelope{Code: domain.CodeForbidden, Message: err.Error(), RequestID: requestID})
	default:
		s.logger.Error("action failed", zap.Error(err))
		s.reply(domain.Envelope{Code: domain.CodeInternalError, Message: "internal error", RequestID: requestID})
	}
}

func (s *session) reply(env domain.Envelope) {
	if err := s.sender.Send(env); err != nil {
		s.logger.Warn("reply dropped", zap.Error(err))
	}
}
