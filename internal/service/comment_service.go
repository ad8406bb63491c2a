package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/repository"
)

// CommentService owns the comment fan-out queue. Comment events are
// routed by the post's visibility: public posts reach everyone online
// except the author, friends-only posts reach the author's friends, and
// group posts reach the group's members.
type CommentService struct {
	social      repository.SocialRepository
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger

	queue *queue.Queue[domain.CommentJob]
}

func NewCommentService(
	social repository.SocialRepository,
	broadcaster *broadcast.Broadcaster,
	opts queue.Options,
	hooks queue.Hooks,
	logger *zap.Logger,
) *CommentService {
	s := &CommentService{social: social, broadcaster: broadcaster, logger: logger}
	s.queue = queue.New("comment", s.process, opts, hooks, logger)
	return s
}

// Enqueue places a comment fan-out job on the queue after validation.
func (s *CommentService) Enqueue(job domain.CommentJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return s.queue.Enqueue(job)
}

// Depth reports the queue backlog.
func (s *CommentService) Depth() int { return s.queue.Depth() }

// Run drains the queue until ctx is cancelled.
func (s *CommentService) Run(ctx context.Context) { s.queue.Run(ctx) }

func (s *CommentService) process(ctx context.Context, job domain.CommentJob) error {
	env := domain.Envelope{
		Code: job.Code,
		Type: "comment",
		Data: job.Comment,
	}

	switch job.Visibility {
	case domain.VisibilityPublic:
		s.broadcaster.ToAll(env, []string{job.AuthorID})
	case domain.VisibilityFriends:
		friendIDs, err := s.social.FriendIDs(ctx, job.AuthorID)
		if err != nil {
			return fmt.Errorf("load friends: %w", err)
		}
		s.broadcaster.ToUsers(friendIDs, env)
	case domain.VisibilityGroup:
		memberIDs, err := s.social.GroupMemberIDs(ctx, job.GroupID)
		if err != nil {
			return fmt.Errorf("load group members: %w", err)
		}
		s.broadcaster.ToUsers(memberIDs, env)
	}
	return nil
}
