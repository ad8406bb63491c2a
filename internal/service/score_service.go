package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/repository"
)

// ScoreService owns the post-interaction score queue. Each job carries a
// signed point delta; the handler upsert-increments the aggregate row
// for the post's current week window rather than writing a row per job.
//
// The week window is computed at processing time, not enqueue time: a
// job enqueued just before a week rollover and processed just after is
// attributed to the new week. Accepted behavior.
type ScoreService struct {
	repo   repository.ScoreRepository
	logger *zap.Logger

	queue *queue.Queue[domain.ScoreJob]

	// now is swappable in tests to pin the week window.
	now func() time.Time
}

func NewScoreService(
	repo repository.ScoreRepository,
	opts queue.Options,
	hooks queue.Hooks,
	logger *zap.Logger,
) *ScoreService {
	s := &ScoreService{repo: repo, logger: logger, now: time.Now}
	s.queue = queue.New("score", s.process, opts, hooks, logger)
	return s
}

// Enqueue places a score delta on the queue after validation.
func (s *ScoreService) Enqueue(job domain.ScoreJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return s.queue.Enqueue(job)
}

// Depth reports the queue backlog.
func (s *ScoreService) Depth() int { return s.queue.Depth() }

// Run drains the queue until ctx is cancelled.
func (s *ScoreService) Run(ctx context.Context) { s.queue.Run(ctx) }

func (s *ScoreService) process(ctx context.Context, job domain.ScoreJob) error {
	weekStart, weekEnd := domain.WeekWindow(s.now())
	delta := job.Interaction.Points(job.IsAdd)
	return s.repo.UpsertScore(ctx, job.PostID, weekStart, weekEnd, delta)
}
