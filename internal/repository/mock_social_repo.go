package repository

import (
	"context"
	"sync"

	"github.com/twokhq/realtime-core/internal/domain"
)

// MockSocialRepository is an in-memory SocialRepository for unit tests.
type MockSocialRepository struct {
	mu       sync.RWMutex
	friends  map[string]map[string]struct{} // userID -> friend set
	follows  map[string][]string            // userID -> follower ids
	blocks   map[string]map[string]struct{} // blockerID -> blocked set
	policies map[string]domain.AllowMessagePolicy
	groups   map[string][]string // groupID -> member ids
}

func NewMockSocialRepository() *MockSocialRepository {
	return &MockSocialRepository{
		friends:  make(map[string]map[string]struct{}),
		follows:  make(map[string][]string),
		blocks:   make(map[string]map[string]struct{}),
		policies: make(map[string]domain.AllowMessagePolicy),
		groups:   make(map[string][]string),
	}
}

// Befriend records a mutual friendship.
func (m *MockSocialRepository) Befriend(a, b string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.friends[a] == nil {
		m.friends[a] = make(map[string]struct{})
	}
	m.friends[a][b] = struct{}{}
}

// SetFollowers seeds the follower list for a user.
func (m *MockSocialRepository) SetFollowers(userID string, followerIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.follows[userID] = followerIDs
}

// Block records a one-directional block.
func (m *MockSocialRepository) Block(blockerID, blockedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocks[blockerID] == nil {
		m.blocks[blockerID] = make(map[string]struct{})
	}
	m.blocks[blockerID][blockedID] = struct{}{}
}

// SetPolicy sets a user's direct-message privacy policy.
func (m *MockSocialRepository) SetPolicy(userID string, p domain.AllowMessagePolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[userID] = p
}

// SetGroupMembers seeds a group's member list.
func (m *MockSocialRepository) SetGroupMembers(groupID string, memberIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[groupID] = memberIDs
}

func (m *MockSocialRepository) AreFriends(_ context.Context, userID, otherID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.friends[userID][otherID]; ok {
		return true, nil
	}
	_, ok := m.friends[otherID][userID]
	return ok, nil
}

func (m *MockSocialRepository) FriendIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id := range m.friends[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockSocialRepository) FollowerIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.follows[userID]...), nil
}

func (m *MockSocialRepository) IsBlocked(_ context.Context, userID, otherID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.blocks[userID][otherID]; ok {
		return true, nil
	}
	_, ok := m.blocks[otherID][userID]
	return ok, nil
}

func (m *MockSocialRepository) MessagePolicy(_ context.Context, userID string) (domain.AllowMessagePolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.policies[userID]; ok {
		return p, nil
	}
	return domain.AllowEveryone, nil
}

func (m *MockSocialRepository) GroupMemberIDs(_ context.Context, groupID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.groups[groupID]...), nil
}

var _ SocialRepository = (*MockSocialRepository)(nil)
