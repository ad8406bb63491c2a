package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/ratelimiter"
	"github.com/twokhq/realtime-core/internal/service"
)

// fakeMailer fails the first failures sends, then succeeds.
type fakeMailer struct {
	mu       sync.Mutex
	failures int
	attempts int
	sent     []domain.MailJob
}

func (m *fakeMailer) Send(_ context.Context, job domain.MailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.attempts <= m.failures {
		return errors.New("provider unavailable")
	}
	m.sent = append(m.sent, job)
	return nil
}

func (m *fakeMailer) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newMailService(m *fakeMailer, maxAttempts int) *service.MailService {
	return service.NewMailService(m, ratelimiter.New(1000),
		queue.Options{MaxAttempts: maxAttempts, RetryDelay: time.Millisecond},
		queue.Hooks{}, zap.NewNop())
}

func TestMail_SentThroughProvider(t *testing.T) {
	m := &fakeMailer{}
	svc := newMailService(m, 3)
	stop := start(svc)
	defer stop()

	job := domain.MailJob{From: "noreply@twok.app", To: "u@example.com", Subject: "Welcome", HTML: "<p>hi</p>"}
	if err := svc.Enqueue(job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitFor(t, func() bool { return m.sentCount() == 1 })
	if got := m.sent[0]; got != job {
		t.Fatalf("provider received %+v, want %+v", got, job)
	}
}

func TestMail_TransientFailureRetriedThenSent(t *testing.T) {
	m := &fakeMailer{failures: 2}
	svc := newMailService(m, 3)
	stop := start(svc)
	defer stop()

	_ = svc.Enqueue(domain.MailJob{From: "a@x", To: "b@x", Subject: "s", HTML: "h"})

	waitFor(t, func() bool { return m.sentCount() == 1 })
	if m.attemptCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", m.attemptCount())
	}
}

func TestMail_DroppedAfterMaxAttempts(t *testing.T) {
	m := &fakeMailer{failures: 100}
	svc := newMailService(m, 3)
	stop := start(svc)
	defer stop()

	_ = svc.Enqueue(domain.MailJob{From: "a@x", To: "b@x", Subject: "s", HTML: "h"})

	waitFor(t, func() bool { return m.attemptCount() == 3 && svc.Depth() == 0 })
	// The handler must not be invoked again after the job is dropped.
	time.Sleep(20 * time.Millisecond)
	if m.attemptCount() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", m.attemptCount())
	}
	if m.sentCount() != 0 {
		t.Fatal("dropped job must not be delivered")
	}
}

func TestMail_InvalidJobRejected(t *testing.T) {
	svc := newMailService(&fakeMailer{}, 3)

	if err := svc.Enqueue(domain.MailJob{From: "a@x", Subject: "s", HTML: "h"}); err == nil {
		t.Fatal("expected validation error for missing recipient")
	}
	if err := svc.Enqueue(domain.MailJob{From: "a@x", To: "b@x", HTML: "h"}); !errors.Is(err, domain.ErrInvalidMailSubject) {
		t.Fatalf("expected ErrInvalidMailSubject, got %v", err)
	}
}
