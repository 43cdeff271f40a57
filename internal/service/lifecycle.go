package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/metrics"
	"github.com/dtroode/gophchat-server/internal/model"
)

// Lifecycle binds connections to identities and tears the binding down on disconnect.
type Lifecycle struct {
	presence  model.PresenceRegistry
	userStore model.UserStore
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewLifecycle(presence model.PresenceRegistry, userStore model.UserStore, metrics *metrics.Metrics, logger *logger.Logger) *Lifecycle {
	return &Lifecycle{
		presence:  presence,
		userStore: userStore,
		metrics:   metrics,
		logger:    logger,
	}
}

// Announce registers conn as the live connection of userID and pushes the roster
// of every other user back to it. An empty identity is ignored.
func (s *Lifecycle) Announce(ctx context.Context, userID string, conn model.Connection) error {
	if userID == "" {
		s.logger.Debug("Lifecycle service: ignoring announce without identity",
			"conn_id", conn.ID())
		return nil
	}

	s.presence.Register(userID, conn)
	s.logger.Info("Lifecycle service: user connected",
		"user_id", userID,
		"conn_id", conn.ID())

	users, err := s.userStore.ListExcept(ctx, userID)
	if err != nil {
		s.logger.Error("Lifecycle service: failed to list users",
			"user_id", userID,
			"error", err.Error())
		s.metrics.StoreError("user_list")
		return fmt.Errorf("failed to list users: %w", err)
	}

	roster := model.RosterPayload{
		AllUsers: lo.Map(users, func(u model.User, _ int) model.UserView { return u.View() }),
	}
	if err := conn.Push(ctx, model.Event{Type: model.EventRoster, Data: roster}); err != nil {
		s.logger.Debug("Lifecycle service: roster push dropped",
			"user_id", userID,
			"conn_id", conn.ID(),
			"error", err.Error())
	}

	return nil
}

// Disconnect removes whatever identity conn was bound to.
func (s *Lifecycle) Disconnect(conn model.Connection) {
	userID, ok := s.presence.Unregister(conn)
	if !ok {
		s.logger.Debug("Lifecycle service: connection closed without presence",
			"conn_id", conn.ID())
		return
	}

	s.logger.Info("Lifecycle service: user disconnected",
		"user_id", userID,
		"conn_id", conn.ID())
}
