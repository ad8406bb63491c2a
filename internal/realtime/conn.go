// Package realtime owns the websocket endpoint: connection lifecycle,
// the wire protocol, and presence transitions. Business rules live in
// the service layer; this package only parses frames, checks
// credentials and routes actions.
package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameBytes = 64 << 10
	sendBuffer    = 64
)

var (
	// ErrConnClosed is returned by Send after the connection is torn down.
	ErrConnClosed = errors.New("realtime: connection closed")
	// ErrSendBufferFull is returned when a consumer stopped draining its
	// socket; the connection is closed as a side effect.
	ErrSendBufferFull = errors.New("realtime: send buffer full")
)

// Conn wraps one websocket connection. All writes go through a buffered
// channel drained by a single pump goroutine, so fan-out paths may call
// Send concurrently without interleaving frames on the wire.
type Conn struct {
	id     string
	ws     *websocket.Conn
	send   chan any
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func newConn(ws *websocket.Conn, logger *zap.Logger) *Conn {
	c := &Conn{
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan any, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go c.writePump()
	return c
}

// ID is the connection's unique identifier, stable for its lifetime.
func (c *Conn) ID() string { return c.id }

// Send queues v for JSON delivery. It never blocks: a consumer that
// stopped reading long enough to fill the buffer is disconnected.
func (c *Conn) Send(v any) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- v:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.logger.Warn("disconnecting slow consumer", zap.String("conn_id", c.id))
		_ = c.Close()
		return ErrSendBufferFull
	}
}

// Close tears the connection down. Safe to call more than once; the
// read loop's error unblocks callers waiting on the socket.
func (c *Conn) Close() error {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
	return nil
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case v := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(v); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
