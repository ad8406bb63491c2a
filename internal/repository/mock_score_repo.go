package repository

import (
	"context"
	"sync"
	"time"
)

// ScoreKey identifies one weekly aggregate row.
type ScoreKey struct {
	PostID    string
	WeekStart time.Time
	WeekEnd   time.Time
}

// MockScoreRepository is an in-memory ScoreRepository for unit tests.
type MockScoreRepository struct {
	mu     sync.RWMutex
	scores map[ScoreKey]int

	UpsertErr error
}

func NewMockScoreRepository() *MockScoreRepository {
	return &MockScoreRepository{scores: make(map[ScoreKey]int)}
}

// Score returns the aggregate for a key, with ok=false when no row exists.
func (m *MockScoreRepository) Score(key ScoreKey) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.scores[key]
	return v, ok
}

// All returns a copy of every aggregate row.
func (m *MockScoreRepository) All() map[ScoreKey]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[ScoreKey]int, len(m.scores))
	for k, v := range m.scores {
		out[k] = v
	}
	return out
}

// Rows returns the number of aggregate rows.
func (m *MockScoreRepository) Rows() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scores)
}

func (m *MockScoreRepository) UpsertScore(_ context.Context, postID string, weekStart, weekEnd time.Time, delta int) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[ScoreKey{PostID: postID, WeekStart: weekStart, WeekEnd: weekEnd}] += delta
	return nil
}

var _ ScoreRepository = (*MockScoreRepository)(nil)
