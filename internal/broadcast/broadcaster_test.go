package broadcast_test

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/registry"
)

// recordingSender captures every envelope written to a fake connection.
type recordingSender struct {
	mu   sync.Mutex
	sent []domain.Envelope
	err  error
}

func (s *recordingSender) Send(v any) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, v.(domain.Envelope))
	return nil
}

func (s *recordingSender) Close() error { return nil }

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func addConn(r *registry.Registry, id, userID string) *recordingSender {
	s := &recordingSender{}
	r.Add(&registry.Conn{ID: id, UserID: userID, Sender: s})
	return s
}

func TestToUser_DeliversToEveryConnection(t *testing.T) {
	r := registry.New(registry.Hooks{})
	b := broadcast.New(r, zap.NewNop(), nil)

	tab1 := addConn(r, "c1", "alice")
	tab2 := addConn(r, "c2", "alice")

	b.ToUser("alice", domain.Envelope{Code: domain.CodeNewMessage, Message: "hello"})

	if tab1.count() != 1 || tab2.count() != 1 {
		t.Fatalf("expected exactly one delivery per connection, got %d/%d", tab1.count(), tab2.count())
	}
}

func TestToUser_OfflineUserIsNoOp(t *testing.T) {
	r := registry.New(registry.Hooks{})
	b := broadcast.New(r, zap.NewNop(), nil)

	b.ToUser("nobody", domain.Envelope{Code: domain.CodeOK})

	if len(r.OnlineUserIDs()) != 0 {
		t.Fatal("broadcast to an offline user must not create a registry entry")
	}
}

func TestToUser_DeadConnectionDoesNotAbortFanout(t *testing.T) {
	r := registry.New(registry.Hooks{})

	var okCount, failCount int
	b := broadcast.New(r, zap.NewNop(), func(ok bool) {
		if ok {
			okCount++
		} else {
			failCount++
		}
	})

	dead := &recordingSender{err: errors.New("broken pipe")}
	r.Add(&registry.Conn{ID: "dead", UserID: "alice", Sender: dead})
	live := addConn(r, "live", "alice")

	b.ToUser("alice", domain.Envelope{Code: domain.CodeOK})

	if live.count() != 1 {
		t.Fatal("expected delivery to the healthy connection despite the dead one")
	}
	if okCount != 1 || failCount != 1 {
		t.Fatalf("expected hooks ok=1 fail=1, got %d/%d", okCount, failCount)
	}
}

func TestToUsers_PartialDelivery(t *testing.T) {
	r := registry.New(registry.Hooks{})
	b := broadcast.New(r, zap.NewNop(), nil)

	bob := addConn(r, "c1", "bob")

	b.ToUsers([]string{"alice", "bob"}, domain.Envelope{Code: domain.CodeRead})

	if bob.count() != 1 {
		t.Fatal("expected online recipient to receive the envelope")
	}
}

func TestToAll_ExcludesListedUsers(t *testing.T) {
	r := registry.New(registry.Hooks{})
	b := broadcast.New(r, zap.NewNop(), nil)

	alice := addConn(r, "c1", "alice")
	bob := addConn(r, "c2", "bob")
	carol := addConn(r, "c3", "carol")

	b.ToAll(domain.Envelope{Code: domain.CodeUserOnline}, []string{"alice"})

	if alice.count() != 0 {
		t.Fatal("excluded user must not receive the broadcast")
	}
	if bob.count() != 1 || carol.count() != 1 {
		t.Fatalf("expected delivery to the others, got bob=%d carol=%d", bob.count(), carol.count())
	}
}

func TestToAll_FullExclusionSendsNothing(t *testing.T) {
	r := registry.New(registry.Hooks{})

	sends := 0
	b := broadcast.New(r, zap.NewNop(), func(bool) { sends++ })

	addConn(r, "c1", "alice")
	addConn(r, "c2", "bob")

	b.ToAll(domain.Envelope{Code: domain.CodeUserOffline}, []string{"alice", "bob"})

	if sends != 0 {
		t.Fatalf("expected zero sends with a full exclusion set, got %d", sends)
	}
}
