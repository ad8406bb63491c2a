package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgScoreRepository struct {
	pool *pgxpool.Pool
}

// NewPgScoreRepository returns a ScoreRepository backed by PostgreSQL.
func NewPgScoreRepository(pool *pgxpool.Pool) ScoreRepository {
	return &pgScoreRepository{pool: pool}
}

// UpsertScore relies on the (post_id, week_start, week_end) unique
// constraint so concurrent deltas for the same key serialize in the
// database rather than racing a read-modify-write.
func (r *pgScoreRepository) UpsertScore(ctx context.Context, postID string, weekStart, weekEnd time.Time, delta int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO post_interaction_scores (post_id, week_start, week_end, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, week_start, week_end)
		DO UPDATE SET score = post_interaction_scores.score + EXCLUDED.score`,
		postID, weekStart, weekEnd, delta,
	)
	if err != nil {
		return fmt.Errorf("upsert post score: %w", err)
	}
	return nil
}
