package model

import "context"

// Event names exchanged over realtime connections.
const (
	EventAnnounceIdentity = "announce_identity"
	EventSendMessage      = "send_message"
	EventFetchHistory     = "fetch_history"

	EventRoster           = "roster"
	EventMessageDelivered = "message_delivered"
	EventHistory          = "history"
)

// Event is a single outbound realtime event.
type Event struct {
	Type string `json:"event"`
	Data any    `json:"data"`
}

// RosterPayload is the data of a roster event.
type RosterPayload struct {
	AllUsers []UserView `json:"allUsers"`
}

// HistoryPayload is the data of a history event.
type HistoryPayload struct {
	Messages []ResolvedMessage `json:"messages"`
}

// Connection is a handle to one live bidirectional client connection.
// Push must not block and must not fail loudly when the connection is gone.
type Connection interface {
	ID() string
	Push(ctx context.Context, event Event) error
}

// PresenceRegistry maps user identities to their live connection.
type PresenceRegistry interface {
	Register(userID string, conn Connection)
	Lookup(userID string) (Connection, bool)
	Unregister(conn Connection) (string, bool)
}
