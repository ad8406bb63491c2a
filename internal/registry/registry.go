// Package registry tracks which users currently hold live realtime
// connections. State is purely in-memory: presence is ephemeral and is
// rebuilt from zero on restart as clients re-authenticate.
package registry

import (
	"sync"
	"time"
)

// Sender is the write side of a live connection. The registry never
// reads from connections; it only hands them out for fan-out writes.
type Sender interface {
	Send(v any) error
	Close() error
}

// Conn is one live duplex connection owned by an authenticated user.
// ID is unique per connection so removal works correctly when a user
// holds several simultaneous connections (multiple tabs or devices).
type Conn struct {
	ID          string
	UserID      string
	Token       string // credential snapshot taken at auth time
	ConnectedAt time.Time
	ExpiresAt   *time.Time
	Sender      Sender
}

// Hooks receives registry size changes; wired to metrics gauges in main.
// Nil hooks are allowed.
type Hooks struct {
	OnConnections func(total int)
	OnOnlineUsers func(total int)
}

// Registry maps a user id to that user's live connections in connect
// order. Safe for concurrent use from connection-handling goroutines.
//
// Invariant: a user id key exists iff the user has at least one live
// connection; the last removal deletes the key.
type Registry struct {
	mu    sync.RWMutex
	conns map[string][]*Conn
	total int
	hooks Hooks
}

func New(hooks Hooks) *Registry {
	return &Registry{conns: make(map[string][]*Conn), hooks: hooks}
}

// Add appends conn to the owner's connection list, creating the list if
// absent. There is no cap on connections per user.
func (r *Registry) Add(conn *Conn) {
	r.mu.Lock()
	r.conns[conn.UserID] = append(r.conns[conn.UserID], conn)
	r.total++
	conns, users := r.total, len(r.conns)
	r.mu.Unlock()

	r.notify(conns, users)
}

// Remove deletes the connection with conn.ID from its owner's list and
// reports whether the owner still has at least one live connection.
// Removal is keyed by connection id, not user id, so closing one of
// several tabs never evicts the others.
func (r *Registry) Remove(conn *Conn) (stillOnline bool) {
	r.mu.Lock()
	list := r.conns[conn.UserID]
	for i, c := range list {
		if c.ID == conn.ID {
			list = append(list[:i], list[i+1:]...)
			r.total--
			break
		}
	}
	if len(list) == 0 {
		delete(r.conns, conn.UserID)
	} else {
		r.conns[conn.UserID] = list
	}
	stillOnline = len(list) > 0
	conns, users := r.total, len(r.conns)
	r.mu.Unlock()

	r.notify(conns, users)
	return stillOnline
}

// Connections returns a copy of the user's live connections in connect
// order. Empty (never nil-panicking) when the user is offline.
func (r *Registry) Connections(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.conns[userID]
	out := make([]*Conn, len(list))
	copy(out, list)
	return out
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// OnlineUserIDs returns a snapshot of every currently-online user id.
// Broadcasters iterate this snapshot so a connect/disconnect mid-fan-out
// cannot corrupt the iteration.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns a copy of the whole user→connections mapping for
// diagnostics. Mutating the result has no effect on the registry.
func (r *Registry) Snapshot() map[string][]*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]*Conn, len(r.conns))
	for id, list := range r.conns {
		cp := make([]*Conn, len(list))
		copy(cp, list)
		out[id] = cp
	}
	return out
}

func (r *Registry) notify(conns, users int) {
	if r.hooks.OnConnections != nil {
		r.hooks.OnConnections(conns)
	}
	if r.hooks.OnOnlineUsers != nil {
		r.hooks.OnOnlineUsers(users)
	}
}
