// Package broadcast fans realtime envelopes out to live connections.
// All operations are fire-and-forget: offline recipients are silently
// skipped and per-connection write failures never abort the fan-out.
package broadcast

import (
	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/registry"
)

// Broadcaster delivers envelopes to one user, a set of users, or every
// online user minus an exclusion set.
type Broadcaster struct {
	reg    *registry.Registry
	logger *zap.Logger

	// onSend is an optional metrics hook invoked once per attempted
	// connection write.
	onSend func(ok bool)
}

func New(reg *registry.Registry, logger *zap.Logger, onSend func(ok bool)) *Broadcaster {
	if onSend == nil {
		onSend = func(bool) {}
	}
	return &Broadcaster{reg: reg, logger: logger, onSend: onSend}
}

// ToUser writes env to every live connection the user holds.
// A user with no connections is a silent no-op: there is no offline
// store or replay.
func (b *Broadcaster) ToUser(userID string, env domain.Envelope) {
	for _, conn := range b.reg.Connections(userID) {
		if err := conn.Sender.Send(env); err != nil {
			// One dead socket must not abort delivery to the rest.
			b.logger.Warn("realtime send failed",
				zap.String("user_id", userID),
				zap.String("conn_id", conn.ID),
				zap.Error(err),
			)
			b.onSend(false)
			continue
		}
		b.onSend(true)
	}
}

// ToUsers delivers env to each listed user; partial delivery is expected
// since some recipients may be offline.
func (b *Broadcaster) ToUsers(userIDs []string, env domain.Envelope) {
	for _, id := range userIDs {
		b.ToUser(id, env)
	}
}

// ToAll delivers env to every online user not present in excludeUserIDs
// (typically the event's originator). The online set is snapshotted
// before iterating so concurrent connects and disconnects cannot corrupt
// the fan-out.
func (b *Broadcaster) ToAll(env domain.Envelope, excludeUserIDs []string) {
	excluded := make(map[string]struct{}, len(excludeUserIDs))
	for _, id := range excludeUserIDs {
		excluded[id] = struct{}{}
	}

	for _, id := range b.reg.OnlineUserIDs() {
		if _, skip := excluded[id]; skip {
			continue
		}
		b.ToUser(id, env)
	}
}
