package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/oklog/ulid/v2"

	"github.com/dtroode/gophchat-server/internal/model"
)

var _ model.Connection = (*Conn)(nil)

// Conn is the handle of one live WebSocket client. Outbound events are queued
// and written by a single writer goroutine.
type Conn struct {
	id           string
	ws           *websocket.Conn
	send         chan model.Event
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
}

func newConn(ws *websocket.Conn, buffer int, writeTimeout time.Duration) *Conn {
	if buffer < 1 {
		buffer = 1
	}
	return &Conn{
		id:           ulid.Make().String(),
		ws:           ws,
		send:         make(chan model.Event, buffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

// ID returns the unique handle id.
func (c *Conn) ID() string {
	return c.id
}

// Push queues event for writing. It never blocks: a closed connection yields
// model.ErrConnectionClosed and a full queue yields model.ErrSlowConsumer.
func (c *Conn) Push(_ context.Context, event model.Event) error {
	select {
	case <-c.done:
		return model.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- event:
		return nil
	case <-c.done:
		return model.ErrConnectionClosed
	default:
		return model.ErrSlowConsumer
	}
}

// writeLoop drains the queue until ctx ends or the connection is closed.
func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case event := <-c.send:
			if err := c.write(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (c *Conn) write(ctx context.Context, event model.Event) error {
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.ws, event)
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
