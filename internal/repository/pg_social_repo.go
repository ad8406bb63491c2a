package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twokhq/realtime-core/internal/domain"
)

type pgSocialRepository struct {
	pool *pgxpool.Pool
}

// NewPgSocialRepository returns a SocialRepository backed by PostgreSQL.
func NewPgSocialRepository(pool *pgxpool.Pool) SocialRepository {
	return &pgSocialRepository{pool: pool}
}

func (r *pgSocialRepository) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE (user_id = $1 AND friend_id = $2)
			   OR (user_id = $2 AND friend_id = $1)
		)`, userID, otherID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}

func (r *pgSocialRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return r.idList(ctx, `
		SELECT friend_id FROM friends WHERE user_id = $1`, userID)
}

func (r *pgSocialRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.idList(ctx, `
		SELECT follower_id FROM followers WHERE following_id = $1`, userID)
}

func (r *pgSocialRepository) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)`, userID, otherID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return exists, nil
}

func (r *pgSocialRepository) MessagePolicy(ctx context.Context, userID string) (domain.AllowMessagePolicy, error) {
	var policy domain.AllowMessagePolicy
	err := r.pool.QueryRow(ctx, `
		SELECT allow_message FROM privacy_settings WHERE user_id = $1`, userID).Scan(&policy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AllowEveryone, nil
		}
		return "", fmt.Errorf("get message policy: %w", err)
	}
	return policy, nil
}

func (r *pgSocialRepository) GroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return r.idList(ctx, `
		SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
}

func (r *pgSocialRepository) idList(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("id list query: %w", err)
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
