package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/registry"
)

// recordingSender captures every envelope written to a fake connection.
type recordingSender struct {
	mu   sync.Mutex
	sent []domain.Envelope
}

func (s *recordingSender) Send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, v.(domain.Envelope))
	return nil
}

func (s *recordingSender) Close() error { return nil }

func (s *recordingSender) envelopes() []domain.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Envelope(nil), s.sent...)
}

// connect registers a fake online connection for userID and returns its
// recording sender.
func connect(r *registry.Registry, userID string) *recordingSender {
	s := &recordingSender{}
	r.Add(&registry.Conn{ID: userID + "-conn", UserID: userID, Sender: s})
	return s
}

// runner is any service that drains its queue in Run.
type runner interface {
	Run(ctx context.Context)
}

// start runs the service's queue consumer and returns a stop function.
func start(svc runner) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}
