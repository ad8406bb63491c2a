package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/repository"
)

// dedupWindow is how far back the duplicate check looks: an identical
// (user, type, redirectUrl) notification inside this window is silently
// dropped instead of persisted and pushed twice.
const dedupWindow = 24 * time.Hour

// NotificationService owns the notification queue and the new-post
// fan-out queue. Producers (HTTP ingest, new-post fan-out) enqueue jobs;
// the single consumer deduplicates, applies the user's notification
// switches, persists, and pushes to the user's live connections.
type NotificationService struct {
	repo        repository.NotificationRepository
	social      repository.SocialRepository
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger

	queue     *queue.Queue[domain.NotificationJob]
	postQueue *queue.Queue[domain.NewPostJob]
}

func NewNotificationService(
	repo repository.NotificationRepository,
	social repository.SocialRepository,
	broadcaster *broadcast.Broadcaster,
	opts queue.Options,
	hooks queue.Hooks,
	postHooks queue.Hooks,
	logger *zap.Logger,
) *NotificationService {
	s := &NotificationService{
		repo:        repo,
		social:      social,
		broadcaster: broadcaster,
		logger:      logger,
	}
	s.queue = queue.New("notification", s.process, opts, hooks, logger)
	s.postQueue = queue.New("new_post", s.fanOutPost, opts, postHooks, logger)
	return s
}

// Enqueue places a notification job on the queue after validation.
func (s *NotificationService) Enqueue(job domain.NotificationJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return s.queue.Enqueue(job)
}

// EnqueueNewPost schedules follower fan-out for a freshly created post.
func (s *NotificationService) EnqueueNewPost(job domain.NewPostJob) error {
	if job.PostID == "" || job.AuthorID == "" {
		return domain.ErrInvalidPostID
	}
	return s.postQueue.Enqueue(job)
}

// Depth reports the combined backlog of both queues.
func (s *NotificationService) Depth() int {
	return s.queue.Depth() + s.postQueue.Depth()
}

// Run drains both queues until ctx is cancelled.
func (s *NotificationService) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.postQueue.Run(ctx)
	}()
	s.queue.Run(ctx)
	wg.Wait()
}

func (s *NotificationService) process(ctx context.Context, job domain.NotificationJob) error {
	since := time.Now().UTC().Add(-dedupWindow)
	exists, err := s.repo.RecentExists(ctx, job.UserID, job.Type, job.RedirectURL, since)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		// Duplicate inside the window: drop it, not a failure.
		s.logger.Debug("duplicate notification dropped",
			zap.String("user_id", job.UserID),
			zap.String("type", string(job.Type)),
		)
		return nil
	}

	if job.Type != domain.TypeNewPost {
		settings, err := s.repo.Settings(ctx, job.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			settings = domain.DefaultNotificationSettings()
		} else if err != nil {
			return fmt.Errorf("load notification settings: %w", err)
		}
		if !settings.Allows(job.Type) {
			return nil // user opted out of this notification type
		}
	}

	n := &domain.Notification{
		ID:          uuid.New().String(),
		UserID:      job.UserID,
		SenderID:    job.SenderID,
		Type:        job.Type,
		Message:     job.Message,
		RedirectURL: job.RedirectURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	s.broadcaster.ToUser(n.UserID, domain.Envelope{
		Code: domain.CodeOK,
		Type: "notification",
		Data: n,
	})
	return nil
}

// fanOutPost resolves the author's followers and enqueues one
// notification job per follower. The per-follower jobs then flow through
// the regular dedup and settings checks.
func (s *NotificationService) fanOutPost(ctx context.Context, job domain.NewPostJob) error {
	followerIDs, err := s.social.FollowerIDs(ctx, job.AuthorID)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}

	for _, followerID := range followerIDs {
		err := s.Enqueue(domain.NotificationJob{
			UserID:      followerID,
			SenderID:    job.AuthorID,
			Type:        domain.TypeNewPost,
			RedirectURL: "/post/" + job.PostID,
		})
		if err != nil {
			s.logger.Warn("could not enqueue new-post notification",
				zap.String("follower_id", followerID),
				zap.Error(err),
			)
		}
	}
	return nil
}
