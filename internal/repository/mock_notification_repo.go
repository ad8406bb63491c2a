package repository

import (
	"context"
	"sync"
	"time"

	"github.com/twokhq/realtime-core/internal/domain"
)

// MockNotificationRepository is an in-memory NotificationRepository for
// unit tests.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
	settings      map[string]domain.NotificationSettings

	// Optional error overrides, set in tests to simulate failure paths.
	CreateErr       error
	RecentExistsErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		settings: make(map[string]domain.NotificationSettings),
	}
}

// SetSettings seeds a user's notification switches.
func (m *MockNotificationRepository) SetSettings(userID string, s domain.NotificationSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[userID] = s
}

// Created returns a copy of every notification persisted so far.
func (m *MockNotificationRepository) Created() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Notification, len(m.notifications))
	for i, n := range m.notifications {
		clone := *n
		out[i] = &clone
	}
	return out
}

func (m *MockNotificationRepository) RecentExists(_ context.Context, userID string, typ domain.NotificationType, redirectURL string, since time.Time) (bool, error) {
	if m.RecentExistsErr != nil {
		return false, m.RecentExistsErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == typ && n.RedirectURL == redirectURL && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.notifications = append(m.notifications, &clone)
	return nil
}

func (m *MockNotificationRepository) Settings(_ context.Context, userID string) (domain.NotificationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[userID]
	if !ok {
		return domain.NotificationSettings{}, domain.ErrNotFound
	}
	return s, nil
}

var _ NotificationRepository = (*MockNotificationRepository)(nil)
