// Package queue implements the in-process delivery queue backing mail,
// notification, comment, new-post and score processing. Each instance is
// strict FIFO with a single consumer: at most one job is ever executing
// per queue, which keeps external collaborators (the mail provider in
// particular) at a friendly call rate.
package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 5 * time.Second
)

// Handler executes one job. A nil return discards the job; an error
// schedules a retry until the attempt ceiling is reached.
type Handler[T any] func(ctx context.Context, payload T) error

// Options tunes a queue instance. Zero values fall back to defaults.
type Options struct {
	// MaxAttempts is the total number of handler invocations a job may
	// consume before it is dropped as a permanent failure.
	MaxAttempts int
	// RetryDelay is how long a failed job is held back before it becomes
	// eligible again at the tail of the queue.
	RetryDelay time.Duration
}

// Hooks receives queue lifecycle events; wired to metrics in main.
// Nil fields are allowed.
type Hooks struct {
	OnProcessed func()
	OnRetried   func()
	OnDropped   func()
	OnDepth     func(depth int)
}

type job[T any] struct {
	payload   T
	attempts  int
	notBefore time.Time
}

// Queue is a single-consumer FIFO work queue over payload type T.
//
// A failed job is re-enqueued at the tail with a not-before timestamp
// rather than retried in place, so a flapping job cannot starve the jobs
// behind it; the drain loop skips jobs still inside their backoff window
// and picks the first eligible one in FIFO order.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	opts    Options
	hooks   Hooks
	logger  *zap.Logger

	mu     sync.Mutex
	jobs   []*job[T]
	closed bool

	wake chan struct{}
}

func New[T any](name string, handler Handler[T], opts Options, hooks Hooks, logger *zap.Logger) *Queue[T] {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if hooks.OnProcessed == nil {
		hooks.OnProcessed = func() {}
	}
	if hooks.OnRetried == nil {
		hooks.OnRetried = func() {}
	}
	if hooks.OnDropped == nil {
		hooks.OnDropped = func() {}
	}
	if hooks.OnDepth == nil {
		hooks.OnDepth = func(int) {}
	}

	return &Queue[T]{
		name:    name,
		handler: handler,
		opts:    opts,
		hooks:   hooks,
		logger:  logger.With(zap.String("queue", name)),
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue appends a job at the tail and wakes the drain loop.
// It never blocks; ordering is enqueue order for jobs that succeed on
// their first attempt.
func (q *Queue[T]) Enqueue(payload T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	q.jobs = append(q.jobs, &job[T]{payload: payload})
	depth := len(q.jobs)
	q.mu.Unlock()

	q.hooks.OnDepth(depth)
	q.signal()
	return nil
}

// Depth returns the number of jobs currently waiting (not executing).
func (q *Queue[T]) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Run drains the queue until ctx is cancelled, executing strictly one
// job at a time. Call from a dedicated goroutine; it blocks while the
// queue is empty.
func (q *Queue[T]) Run(ctx context.Context) {
	q.logger.Info("queue consumer started",
		zap.Int("max_attempts", q.opts.MaxAttempts),
		zap.Duration("retry_delay", q.opts.RetryDelay),
	)

	for {
		j, wait, ok := q.take(time.Now())
		if !ok {
			if !q.sleep(ctx, wait) {
				q.logger.Info("queue consumer stopping")
				return
			}
			continue
		}

		q.process(ctx, j)

		select {
		case <-ctx.Done():
			q.logger.Info("queue consumer stopping")
			return
		default:
		}
	}
}

// Close rejects further enqueues. Jobs already queued are still drained
// by Run until its context is cancelled.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// take removes and returns the first job whose backoff window has
// passed. When nothing is eligible it returns the wait until the
// earliest retry becomes due, or 0 if the queue is empty.
func (q *Queue[T]) take(now time.Time) (*job[T], time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var earliest time.Duration
	for i, j := range q.jobs {
		if !j.notBefore.After(now) {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			q.hooks.OnDepth(len(q.jobs))
			return j, 0, true
		}
		if d := j.notBefore.Sub(now); earliest == 0 || d < earliest {
			earliest = d
		}
	}
	return nil, earliest, false
}

// sleep waits for a wake-up, the retry-due timer, or cancellation.
// Returns false when ctx is done.
func (q *Queue[T]) sleep(ctx context.Context, wait time.Duration) bool {
	if wait <= 0 {
		select {
		case <-q.wake:
			return true
		case <-ctx.Done():
			return false
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-q.wake:
		return true
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *Queue[T]) process(ctx context.Context, j *job[T]) {
	err := q.handler(ctx, j.payload)
	if err == nil {
		q.hooks.OnProcessed()
		return
	}

	j.attempts++
	if j.attempts >= q.opts.MaxAttempts {
		// No dead-letter store: the job is gone. Operators alert on
		// this log line.
		q.logger.Error("job dropped after exhausting retries",
			zap.Int("attempts", j.attempts),
			zap.Error(err),
		)
		q.hooks.OnDropped()
		return
	}

	j.notBefore = time.Now().Add(q.opts.RetryDelay)
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	depth := len(q.jobs)
	q.mu.Unlock()
	q.hooks.OnDepth(depth)
	q.hooks.OnRetried()
	q.signal()

	q.logger.Warn("job failed, retrying",
		zap.Int("attempt", j.attempts),
		zap.Int("max_attempts", q.opts.MaxAttempts),
		zap.Error(err),
	)
}

func (q *Queue[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
