package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/mailer"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/ratelimiter"
)

// MailService owns the outbound mail queue. The queue's strictly serial
// drain plus the token-bucket limiter keep the mail provider within its
// call-rate budget; transient provider failures ride the queue's bounded
// retry.
type MailService struct {
	mailer  mailer.Mailer
	limiter *ratelimiter.MailLimiter
	logger  *zap.Logger

	queue *queue.Queue[domain.MailJob]
}

func NewMailService(
	m mailer.Mailer,
	limiter *ratelimiter.MailLimiter,
	opts queue.Options,
	hooks queue.Hooks,
	logger *zap.Logger,
) *MailService {
	s := &MailService{mailer: m, limiter: limiter, logger: logger}
	s.queue = queue.New("mail", s.process, opts, hooks, logger)
	return s
}

// Enqueue places a mail job on the queue after validation.
func (s *MailService) Enqueue(job domain.MailJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return s.queue.Enqueue(job)
}

// Depth reports the queue backlog.
func (s *MailService) Depth() int { return s.queue.Depth() }

// Run drains the queue until ctx is cancelled.
func (s *MailService) Run(ctx context.Context) { s.queue.Run(ctx) }

func (s *MailService) process(ctx context.Context, job domain.MailJob) error {
	// Block here until the limiter grants a token.
	if err := s.limiter.Wait(ctx); err != nil {
		// ctx cancelled while waiting: shutting down.
		return err
	}
	if err := s.mailer.Send(ctx, job); err != nil {
		return err
	}
	s.logger.Info("mail sent", zap.String("to", job.To))
	return nil
}
