package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/api/middleware"
	"github.com/twokhq/realtime-core/internal/auth"
	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/registry"
	"github.com/twokhq/realtime-core/internal/service"
)

// DefaultPresenceDebounce is the hold-down applied before announcing a
// user offline, long enough for a page navigation to re-establish its
// connection.
const DefaultPresenceDebounce = 2 * time.Second

// Options tunes the protocol handler. The zero value is usable.
type Options struct {
	// PresenceDebounce overrides DefaultPresenceDebounce when positive.
	PresenceDebounce time.Duration
}

// Handler serves the websocket endpoint and runs one session per
// accepted connection.
type Handler struct {
	reg      *registry.Registry
	bcast    *broadcast.Broadcaster
	chat     *service.ChatService
	verifier auth.Verifier
	logger   *zap.Logger

	presenceDebounce time.Duration
	upgrader         websocket.Upgrader
}

func NewHandler(
	reg *registry.Registry,
	bcast *broadcast.Broadcaster,
	chat *service.ChatService,
	verifier auth.Verifier,
	opts Options,
	logger *zap.Logger,
) *Handler {
	debounce := opts.PresenceDebounce
	if debounce <= 0 {
		debounce = DefaultPresenceDebounce
	}
	return &Handler{
		reg:              reg,
		bcast:            bcast,
		chat:             chat,
		verifier:         verifier,
		logger:           logger,
		presenceDebounce: debounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin policy is enforced at the edge proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Carry the request's correlation id across the upgrade so realtime
	// logs stay traceable alongside the HTTP access log.
	logger := middleware.CorrelationLogger(r.Context(), h.logger)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newConn(ws, logger)
	sess := h.newSession(conn.ID(), conn, logger)
	sess.challenge()

	ws.SetReadLimit(maxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read ended", zap.String("conn_id", conn.ID()), zap.Error(err))
			}
			break
		}
		sess.handleFrame(r.Context(), raw)
	}

	sess.close()
	_ = conn.Close()
}
