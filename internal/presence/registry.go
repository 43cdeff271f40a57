// Package presence tracks which connection currently speaks for each user.
package presence

import (
	"sync"

	"github.com/dtroode/gophchat-server/internal/model"
)

var _ model.PresenceRegistry = (*Registry)(nil)

// Registry is an in-memory, single-process presence registry.
//
// It keeps two indexes in sync: identity -> connection for routing and
// connection -> identity so that a disconnect does not need to scan.
// Entries are lost on restart.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]model.Connection
	byConn map[model.Connection]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byUser: make(map[string]model.Connection),
		byConn: make(map[model.Connection]string),
	}
}

// Register binds userID to conn, replacing any previous connection for userID.
// The replaced connection is neither notified nor closed. If conn was already
// bound to another identity, that identity is dropped from the registry.
func (r *Registry) Register(userID string, conn model.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[userID]; ok {
		delete(r.byConn, prev)
	}
	// a connection speaks for one identity at a time
	if prevUser, ok := r.byConn[conn]; ok {
		delete(r.byUser, prevUser)
	}

	r.byUser[userID] = conn
	r.byConn[conn] = userID
}

// Lookup returns the live connection of userID, if any.
func (r *Registry) Lookup(userID string) (model.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byUser[userID]
	return conn, ok
}

// Unregister removes the entry held by conn and returns the identity it was bound to.
// It is a no-op for connections that were never registered or were superseded.
func (r *Registry) Unregister(conn model.Connection) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[conn]
	if !ok {
		return "", false
	}
	delete(r.byConn, conn)
	delete(r.byUser, userID)

	return userID, true
}

// Len returns the number of users currently present. It backs the presence gauge.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser)
}
