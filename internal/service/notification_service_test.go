package service_test

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/registry"
	"github.com/twokhq/realtime-core/internal/repository"
	"github.com/twokhq/realtime-core/internal/service"
)

type notificationFixture struct {
	svc    *service.NotificationService
	repo   *repository.MockNotificationRepository
	social *repository.MockSocialRepository
	reg    *registry.Registry
}

func newNotificationFixture() *notificationFixture {
	repo := repository.NewMockNotificationRepository()
	social := repository.NewMockSocialRepository()
	reg := registry.New(registry.Hooks{})
	b := broadcast.New(reg, zap.NewNop(), nil)
	svc := service.NewNotificationService(repo, social, b,
		queue.Options{MaxAttempts: 2, RetryDelay: time.Millisecond},
		queue.Hooks{}, queue.Hooks{}, zap.NewNop())
	return &notificationFixture{svc: svc, repo: repo, social: social, reg: reg}
}

var likeJob = domain.NotificationJob{
	UserID:      "bob",
	SenderID:    "alice",
	Type:        domain.TypeLike,
	RedirectURL: "/post/p1",
}

func TestNotification_PersistedAndPushed(t *testing.T) {
	f := newNotificationFixture()
	stop := start(f.svc)
	defer stop()

	bob := connect(f.reg, "bob")

	if err := f.svc.Enqueue(likeJob); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitFor(t, func() bool { return len(f.repo.Created()) == 1 })

	created := f.repo.Created()[0]
	if created.UserID != "bob" || created.Type != domain.TypeLike {
		t.Fatalf("unexpected notification: %+v", created)
	}

	waitFor(t, func() bool { return len(bob.envelopes()) == 1 })
	env := bob.envelopes()[0]
	if env.Code != domain.CodeOK || env.Type != "notification" {
		t.Fatalf("unexpected push envelope: %+v", env)
	}
}

func TestNotification_DedupWithin24h(t *testing.T) {
	f := newNotificationFixture()
	stop := start(f.svc)
	defer stop()

	if err := f.svc.Enqueue(likeJob); err != nil {
		t.Fatalf("enqueue first: %v", err)
	}
	if err := f.svc.Enqueue(likeJob); err != nil {
		t.Fatalf("enqueue duplicate: %v", err)
	}

	waitFor(t, func() bool { return f.svc.Depth() == 0 && len(f.repo.Created()) >= 1 })
	// Let the consumer finish the second job too.
	time.Sleep(10 * time.Millisecond)

	if got := len(f.repo.Created()); got != 1 {
		t.Fatalf("expected exactly one persisted notification, got %d", got)
	}
}

func TestNotification_DistinctTargetsNotDeduplicated(t *testing.T) {
	f := newNotificationFixture()
	stop := start(f.svc)
	defer stop()

	other := likeJob
	other.UserID = "carol"
	_ = f.svc.Enqueue(likeJob)
	_ = f.svc.Enqueue(other)

	waitFor(t, func() bool { return len(f.repo.Created()) == 2 })
}

func TestNotification_SettingsOptOut(t *testing.T) {
	f := newNotificationFixture()
	stop := start(f.svc)
	defer stop()

	settings := domain.DefaultNotificationSettings()
	settings.PostLikes = false
	f.repo.SetSettings("bob", settings)

	_ = f.svc.Enqueue(likeJob)

	waitFor(t, func() bool { return f.svc.Depth() == 0 })
	time.Sleep(10 * time.Millisecond)

	if got := len(f.repo.Created()); got != 0 {
		t.Fatalf("expected opted-out notification dropped, got %d persisted", got)
	}
}

func TestNotification_NewPostBypassesSettings(t *testing.T) {
	f := newNotificationFixture()
	stop := start(f.svc)
	defer stop()

	// Opted out of everything, but new_post fan-out is not gated.
	f.repo.SetSettings("bob", domain.NotificationSettings{})

	_ = f.svc.Enqueue(domain.NotificationJob{
		UserID:      "bob",
		SenderID:    "alice",
		Type:        domain.TypeNewPost,
		RedirectURL: "/post/p2",
	})

	waitFor(t, func() bool { return len(f.repo.Created()) == 1 })
}

func TestNotification_NewPostFanOut(t *testing.T) {
	f := newNotificationFixture()
	stop := start(f.svc)
	defer stop()

	f.social.SetFollowers("alice", "bob", "carol", "dave")

	if err := f.svc.EnqueueNewPost(domain.NewPostJob{PostID: "p9", AuthorID: "alice"}); err != nil {
		t.Fatalf("enqueue new post: %v", err)
	}

	waitFor(t, func() bool { return len(f.repo.Created()) == 3 })

	for _, n := range f.repo.Created() {
		if n.Type != domain.TypeNewPost || n.RedirectURL != "/post/p9" {
			t.Fatalf("unexpected fan-out notification: %+v", n)
		}
	}
}

func TestNotification_FanOutQueueReportsThroughOwnHooks(t *testing.T) {
	repo := repository.NewMockNotificationRepository()
	social := repository.NewMockSocialRepository()
	reg := registry.New(registry.Hooks{})
	b := broadcast.New(reg, zap.NewNop(), nil)

	var mu sync.Mutex
	notifProcessed := 0
	postProcessed := 0
	svc := service.NewNotificationService(repo, social, b,
		queue.Options{MaxAttempts: 2, RetryDelay: time.Millisecond},
		queue.Hooks{OnProcessed: func() {
			mu.Lock()
			notifProcessed++
			mu.Unlock()
		}},
		queue.Hooks{OnProcessed: func() {
			mu.Lock()
			postProcessed++
			mu.Unlock()
		}},
		zap.NewNop())
	stop := start(svc)
	defer stop()

	social.SetFollowers("alice", "bob")

	if err := svc.EnqueueNewPost(domain.NewPostJob{PostID: "p3", AuthorID: "alice"}); err != nil {
		t.Fatalf("enqueue new post: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return postProcessed == 1 && notifProcessed == 1
	})
}

func TestNotification_InvalidJobRejected(t *testing.T) {
	f := newNotificationFixture()

	bad := likeJob
	bad.Type = "carrier-pigeon"
	if err := f.svc.Enqueue(bad); err != domain.ErrInvalidNotificationType {
		t.Fatalf("expected ErrInvalidNotificationType, got %v", err)
	}
}
