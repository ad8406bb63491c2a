package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// MailLimiter is the token bucket in front of the mail provider.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum; combined with the mail
// queue's one-job-at-a-time drain this keeps the provider happy.
type MailLimiter struct {
	limiter *rate.Limiter
}

// New creates a MailLimiter granting ratePerSec sends per second.
func New(ratePerSec int) *MailLimiter {
	return &MailLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Wait blocks until a token is available. Returns a non-nil error only
// if ctx is cancelled while waiting.
func (l *MailLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
