package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twokhq/realtime-core/internal/domain"
)

type pgChatRepository struct {
	pool *pgxpool.Pool
}

// NewPgChatRepository returns a ChatRepository backed by PostgreSQL.
func NewPgChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &pgChatRepository{pool: pool}
}

func (r *pgChatRepository) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, is_group FROM conversations WHERE id = $1`, id)

	c := &domain.Conversation{}
	if err := row.Scan(&c.ID, &c.IsGroup); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	ids, err := r.participantIDs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.ParticipantIDs = ids
	return c, nil
}

func (r *pgChatRepository) participantIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM conversation_participants
		WHERE conversation_id = $1
		ORDER BY joined_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgChatRepository) CreateMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	m := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		SentAt:         time.Now().UTC(),
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read, is_revoked, sent_at)
		VALUES ($1, $2, $3, $4, false, false, $5)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.SentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`, m.SentAt, conversationID)
	if err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}

	// Sender projection for the broadcast payload; best-effort.
	row := r.pool.QueryRow(ctx, `
		SELECT name, avatar_url FROM profiles WHERE user_id = $1`, senderID)
	sender := domain.UserSummary{ID: senderID}
	if err := row.Scan(&sender.Name, &sender.AvatarURL); err == nil {
		m.Sender = &sender
	}

	return m, nil
}

func (r *pgChatRepository) GetMessageBySender(ctx context.Context, messageID, senderID string) (*domain.Message, *domain.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, conversation_id, sender_id, content, sticker_id, is_read, is_revoked, sent_at
		FROM messages WHERE id = $1 AND sender_id = $2`, messageID, senderID)

	m := &domain.Message{}
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
		&m.StickerID, &m.IsRead, &m.IsRevoked, &m.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotMessageSender
		}
		return nil, nil, fmt.Errorf("get message: %w", err)
	}

	c, err := r.GetConversation(ctx, m.ConversationID)
	if err != nil {
		return nil, nil, err
	}
	return m, c, nil
}

func (r *pgChatRepository) RevokeMessage(ctx context.Context, messageID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		UPDATE messages SET is_revoked = true, sticker_id = NULL WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("revoke message: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM files WHERE message_id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("delete message files: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgChatRepository) DeleteUnreadCounters(ctx context.Context, userID, conversationID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM unread_message_counters
		WHERE user_id = $1 AND conversation_id = $2`, userID, conversationID)
	if err != nil {
		return fmt.Errorf("delete unread counters: %w", err)
	}
	return nil
}

func (r *pgChatRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE conversation_id = $1 AND sender_id <> $2`, conversationID, readerID)
	if err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	return nil
}

func (r *pgChatRepository) MarkMessagesRead(ctx context.Context, messageIDs []string, readerID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE id = ANY($1) AND sender_id <> $2`, messageIDs, readerID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

func (r *pgChatRepository) ConversationsForMessages(ctx context.Context, messageIDs []string) ([]*domain.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT conversation_id FROM messages WHERE id = ANY($1)`, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("conversations for messages: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	conversations := make([]*domain.Conversation, 0, len(ids))
	for _, id := range ids {
		c, err := r.GetConversation(ctx, id)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}
