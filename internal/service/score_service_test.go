package service_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/repository"
	"github.com/twokhq/realtime-core/internal/service"
)

func newScoreService(repo *repository.MockScoreRepository) *service.ScoreService {
	return service.NewScoreService(repo,
		queue.Options{MaxAttempts: 2, RetryDelay: time.Millisecond},
		queue.Hooks{}, zap.NewNop())
}

func TestScore_AggregatesIntoSingleWeeklyRow(t *testing.T) {
	repo := repository.NewMockScoreRepository()
	svc := newScoreService(repo)
	stop := start(svc)
	defer stop()

	jobs := []domain.ScoreJob{
		{PostID: "p1", Interaction: domain.InteractionReaction, IsAdd: true}, // +1
		{PostID: "p1", Interaction: domain.InteractionComment, IsAdd: true},  // +2
		{PostID: "p1", Interaction: domain.InteractionShare, IsAdd: true},    // +3
		{PostID: "p1", Interaction: domain.InteractionSave, IsAdd: true},     // +2
		{PostID: "p1", Interaction: domain.InteractionReaction, IsAdd: false}, // -1
	}
	for _, j := range jobs {
		if err := svc.Enqueue(j); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	waitFor(t, func() bool {
		for _, score := range repo.All() {
			if score == 7 {
				return true
			}
		}
		return false
	})
	if repo.Rows() != 1 {
		t.Fatalf("expected one aggregate row per (post, week), got %d", repo.Rows())
	}
}

func TestScore_SeparateRowsPerPost(t *testing.T) {
	repo := repository.NewMockScoreRepository()
	svc := newScoreService(repo)
	stop := start(svc)
	defer stop()

	_ = svc.Enqueue(domain.ScoreJob{PostID: "p1", Interaction: domain.InteractionShare, IsAdd: true})
	_ = svc.Enqueue(domain.ScoreJob{PostID: "p2", Interaction: domain.InteractionShare, IsAdd: true})

	waitFor(t, func() bool { return repo.Rows() == 2 })
}

func TestScore_WindowBoundariesMatchProcessingTime(t *testing.T) {
	repo := repository.NewMockScoreRepository()
	svc := newScoreService(repo)
	stop := start(svc)
	defer stop()

	before := time.Now()
	_ = svc.Enqueue(domain.ScoreJob{PostID: "p1", Interaction: domain.InteractionSave, IsAdd: true})
	waitFor(t, func() bool { return repo.Rows() == 1 })

	wantStart, wantEnd := domain.WeekWindow(before)
	for key := range repo.All() {
		if !key.WeekStart.Equal(wantStart) || !key.WeekEnd.Equal(wantEnd) {
			t.Fatalf("expected window [%v, %v], got [%v, %v]",
				wantStart, wantEnd, key.WeekStart, key.WeekEnd)
		}
	}
}

func TestScore_InvalidJobRejected(t *testing.T) {
	svc := newScoreService(repository.NewMockScoreRepository())

	if err := svc.Enqueue(domain.ScoreJob{PostID: "p1", Interaction: "poke", IsAdd: true}); err != domain.ErrInvalidInteraction {
		t.Fatalf("expected ErrInvalidInteraction, got %v", err)
	}
	if err := svc.Enqueue(domain.ScoreJob{Interaction: domain.InteractionSave}); err != domain.ErrInvalidPostID {
		t.Fatalf("expected ErrInvalidPostID, got %v", err)
	}
}
