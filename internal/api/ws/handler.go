package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/metrics"
	"github.com/dtroode/gophchat-server/internal/model"
)

// LifecycleService binds connections to identities.
type LifecycleService interface {
	Announce(ctx context.Context, userID string, conn model.Connection) error
	Disconnect(conn model.Connection)
}

// RelayService accepts messages from clients.
type RelayService interface {
	Submit(ctx context.Context, params model.SubmitParams) error
}

// HistoryService assembles conversations.
type HistoryService interface {
	FetchHistory(ctx context.Context, req model.HistoryRequest) ([]model.ResolvedMessage, error)
}

// Options tunes accepted connections.
type Options struct {
	OriginPatterns []string
	ReadLimitBytes int64
	WriteTimeout   time.Duration
	SendBuffer     int
}

// inbound is the envelope of a client event.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type announcePayload struct {
	UserID string `json:"userId"`
}

// Handler upgrades requests to WebSocket connections and dispatches their events.
type Handler struct {
	lifecycle LifecycleService
	relay     RelayService
	history   HistoryService
	metrics   *metrics.Metrics
	opts      Options
	logger    *logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(
	lifecycle LifecycleService,
	relay RelayService,
	history HistoryService,
	metrics *metrics.Metrics,
	opts Options,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		relay:     relay,
		history:   history,
		metrics:   metrics,
		opts:      opts,
		logger:    logger,
	}
}

// ServeHTTP accepts the connection and serves it until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.opts.OriginPatterns,
	})
	if err != nil {
		h.logger.Debug("WS handler: failed to accept connection",
			"remote_addr", r.RemoteAddr,
			"error", err.Error())
		return
	}
	if h.opts.ReadLimitBytes > 0 {
		wsConn.SetReadLimit(h.opts.ReadLimitBytes)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := newConn(wsConn, h.opts.SendBuffer, h.opts.WriteTimeout)
	h.metrics.ConnectionOpened()
	h.logger.Debug("WS handler: connection opened",
		"conn_id", conn.ID(),
		"remote_addr", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := conn.writeLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Debug("WS handler: write failed",
				"conn_id", conn.ID(),
				"error", err.Error())
		}
		// a dead writer must unblock the reader
		cancel()
	}()

	defer func() {
		conn.close()
		h.lifecycle.Disconnect(conn)
		h.metrics.ConnectionClosed()
		cancel()
		<-writerDone
		wsConn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := wsConn.Read(ctx)
		if err != nil {
			h.logReadError(conn, err)
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("WS handler: malformed envelope",
				"conn_id", conn.ID(),
				"error", err.Error())
			continue
		}
		h.dispatch(ctx, conn, msg)
	}
}

func (h *Handler) dispatch(ctx context.Context, conn *Conn, msg inbound) {
	switch msg.Event {
	case model.EventAnnounceIdentity:
		var p announcePayload
		if !h.decode(conn, msg, &p) {
			return
		}
		if err := h.lifecycle.Announce(ctx, p.UserID, conn); err != nil {
			h.logger.Debug("WS handler: announce failed",
				"conn_id", conn.ID(),
				"error", err.Error())
		}
	case model.EventSendMessage:
		var p model.SubmitParams
		if !h.decode(conn, msg, &p) {
			return
		}
		p.Payload = msg.Data
		if err := h.relay.Submit(ctx, p); err != nil {
			h.logger.Debug("WS handler: submit failed",
				"conn_id", conn.ID(),
				"error", err.Error())
		}
	case model.EventFetchHistory:
		var p model.HistoryRequest
		if !h.decode(conn, msg, &p) {
			return
		}
		if _, err := h.history.FetchHistory(ctx, p); err != nil {
			h.logger.Debug("WS handler: history fetch failed",
				"conn_id", conn.ID(),
				"error", err.Error())
		}
	default:
		h.logger.Debug("WS handler: ignoring unknown event",
			"conn_id", conn.ID(),
			"event", msg.Event)
	}
}

func (h *Handler) decode(conn *Conn, msg inbound, v any) bool {
	if len(msg.Data) == 0 {
		msg.Data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		h.logger.Debug("WS handler: malformed payload",
			"conn_id", conn.ID(),
			"event", msg.Event,
			"error", err.Error())
		return false
	}
	return true
}

func (h *Handler) logReadError(conn *Conn, err error) {
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
		h.logger.Debug("WS handler: connection closed",
			"conn_id", conn.ID())
		return
	}
	h.logger.Debug("WS handler: read failed",
		"conn_id", conn.ID(),
		"error", err.Error())
}
