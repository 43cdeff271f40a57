package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/metrics"
	"github.com/dtroode/gophchat-server/internal/model"
)

// History assembles conversations and pushes them to the requesting connection.
type History struct {
	messages    model.MessageStore
	attachments *attachments
	presence    model.PresenceRegistry
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewHistory(
	messageStore model.MessageStore,
	attachmentStore model.AttachmentStore,
	storage model.Storage,
	presence model.PresenceRegistry,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *History {
	return &History{
		messages:    messageStore,
		attachments: newAttachments(attachmentStore, storage, logger),
		presence:    presence,
		metrics:     metrics,
		logger:      logger,
	}
}

// FetchHistory loads every message exchanged between the requester and the
// counterpart, oldest first, and pushes them to the requester's live connection.
// The assembled list is returned whether or not it could be pushed.
func (s *History) FetchHistory(ctx context.Context, req model.HistoryRequest) ([]model.ResolvedMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	messages, err := s.messages.GetConversation(ctx, req.RequesterID, req.CounterpartID)
	if err != nil {
		s.logger.Error("History service: failed to get conversation",
			"requester_id", req.RequesterID,
			"counterpart_id", req.CounterpartID,
			"error", err.Error())
		s.metrics.StoreError("message_list")
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	resolved := make([]model.ResolvedMessage, 0, len(messages))
	for _, msg := range messages {
		view, err := s.attachments.resolve(ctx, msg)
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Warn("History service: message references missing attachment",
				"message_id", msg.ID,
				"attachment_id", msg.AttachmentID)
		} else if err != nil {
			s.logger.Error("History service: failed to resolve attachment",
				"message_id", msg.ID,
				"error", err.Error())
			s.metrics.StoreError("attachment_get")
			return nil, fmt.Errorf("failed to resolve message %s: %w", msg.ID, err)
		}
		resolved = append(resolved, view)
	}

	conn, ok := s.presence.Lookup(req.RequesterID)
	if !ok {
		s.logger.Debug("History service: requester offline, dropping history",
			"requester_id", req.RequesterID)
		s.metrics.HistoryPush(metrics.OutcomeOffline)
		return resolved, nil
	}

	err = conn.Push(ctx, model.Event{
		Type: model.EventHistory,
		Data: model.HistoryPayload{Messages: resolved},
	})
	if err != nil {
		s.logger.Debug("History service: history push dropped",
			"requester_id", req.RequesterID,
			"conn_id", conn.ID(),
			"error", err.Error())
		s.metrics.HistoryPush(metrics.OutcomeFailed)
		return resolved, nil
	}

	s.metrics.HistoryPush(metrics.OutcomeDelivered)
	return resolved, nil
}
