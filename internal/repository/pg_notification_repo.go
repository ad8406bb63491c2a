package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twokhq/realtime-core/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) RecentExists(ctx context.Context, userID string, typ domain.NotificationType, redirectURL string, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND redirect_url = $3 AND created_at >= $4
		)`, userID, typ, redirectURL, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recent notification: %w", err)
	}
	return exists, nil
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, sender_id, type, message, redirect_url, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.SenderID, n.Type, n.Message, n.RedirectURL, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	// Sender projection for the push payload; best-effort.
	row := r.pool.QueryRow(ctx, `
		SELECT name, avatar_url FROM profiles WHERE user_id = $1`, n.SenderID)
	sender := domain.UserSummary{ID: n.SenderID}
	if err := row.Scan(&sender.Name, &sender.AvatarURL); err == nil {
		n.Sender = &sender
	}
	return nil
}

func (r *pgNotificationRepository) Settings(ctx context.Context, userID string) (domain.NotificationSettings, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT post_comments, post_likes, comment_likes, new_follower,
		       friend_requests, group_invites, direct_messages, email_notifications
		FROM notification_settings WHERE user_id = $1`, userID)

	var s domain.NotificationSettings
	err := row.Scan(&s.PostComments, &s.PostLikes, &s.CommentLikes, &s.NewFollower,
		&s.FriendRequests, &s.GroupInvites, &s.DirectMessages, &s.EmailNotifications)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotificationSettings{}, domain.ErrNotFound
		}
		return domain.NotificationSettings{}, fmt.Errorf("get notification settings: %w", err)
	}
	return s, nil
}
