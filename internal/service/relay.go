package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/metrics"
	"github.com/dtroode/gophchat-server/internal/model"
)

// Relay persists messages and pushes them to recipients that are currently connected.
type Relay struct {
	messages    model.MessageStore
	attachments *attachments
	presence    model.PresenceRegistry
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewRelay(
	messageStore model.MessageStore,
	attachmentStore model.AttachmentStore,
	storage model.Storage,
	presence model.PresenceRegistry,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Relay {
	return &Relay{
		messages:    messageStore,
		attachments: newAttachments(attachmentStore, storage, logger),
		presence:    presence,
		metrics:     metrics,
		logger:      logger,
	}
}

// Submit persists a text message and pushes the client payload to the recipient.
// Delivery is attempted even if persistence fails; the persistence error is
// logged and returned, never retried.
func (s *Relay) Submit(ctx context.Context, params model.SubmitParams) error {
	if err := params.Validate(); err != nil {
		s.logger.Warn("Relay service: rejected message",
			"sender_id", params.SenderID,
			"recipient_id", params.RecipientID,
			"error", err.Error())
		return err
	}

	msg := model.Message{
		ID:          uuid.New(),
		SenderID:    params.SenderID,
		SenderName:  params.SenderName,
		RecipientID: params.RecipientID,
		Text:        params.Text,
		CreatedAt:   time.Now(),
	}

	var persistErr error
	if _, err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Error("Relay service: failed to save message",
			"sender_id", msg.SenderID,
			"recipient_id", msg.RecipientID,
			"error", err.Error())
		s.metrics.StoreError("message_create")
		persistErr = fmt.Errorf("failed to save message: %w", err)
	}

	var payload any = params.Payload
	if len(params.Payload) == 0 {
		payload = model.SubmitParams{
			SenderID:    msg.SenderID,
			SenderName:  msg.SenderName,
			RecipientID: msg.RecipientID,
			Text:        msg.Text,
		}
	}
	s.deliver(ctx, msg.RecipientID, payload)

	return persistErr
}

// SubmitWithAttachment stores the payload, persists a message referencing it and
// returns the message with the attachment resolved. The recipient, if connected,
// receives the same resolved message.
func (s *Relay) SubmitWithAttachment(ctx context.Context, params model.SubmitParams, data []byte, fileName string) (model.ResolvedMessage, error) {
	if err := params.Validate(); err != nil {
		return model.ResolvedMessage{}, err
	}

	attachment, err := s.attachments.save(ctx, data, fileName)
	if err != nil {
		s.logger.Error("Relay service: failed to save attachment",
			"sender_id", params.SenderID,
			"file_name", fileName,
			"error", err.Error())
		s.metrics.StoreError("attachment_create")
		return model.ResolvedMessage{}, err
	}

	msg := model.Message{
		ID:           uuid.New(),
		SenderID:     params.SenderID,
		SenderName:   params.SenderName,
		RecipientID:  params.RecipientID,
		Text:         params.Text,
		AttachmentID: &attachment.ID,
		CreatedAt:    time.Now(),
	}

	saved, err := s.messages.Create(ctx, msg)
	if err != nil {
		s.logger.Error("Relay service: failed to save message with attachment",
			"sender_id", msg.SenderID,
			"attachment_id", attachment.ID,
			"error", err.Error())
		s.metrics.StoreError("message_create")
		return model.ResolvedMessage{}, fmt.Errorf("failed to save message: %w", err)
	}

	resolved, err := s.attachments.resolve(ctx, saved)
	if err != nil {
		s.logger.Error("Relay service: failed to resolve attachment",
			"message_id", saved.ID,
			"attachment_id", attachment.ID,
			"error", err.Error())
		s.metrics.StoreError("attachment_get")
		return model.ResolvedMessage{}, fmt.Errorf("failed to resolve message: %w", err)
	}

	s.deliver(ctx, resolved.RecipientID, resolved)

	return resolved, nil
}

func (s *Relay) deliver(ctx context.Context, recipientID string, payload any) {
	conn, ok := s.presence.Lookup(recipientID)
	if !ok {
		s.logger.Debug("Relay service: recipient offline, skipping delivery",
			"recipient_id", recipientID)
		s.metrics.Delivery(metrics.OutcomeOffline)
		return
	}

	err := conn.Push(ctx, model.Event{Type: model.EventMessageDelivered, Data: payload})
	if err != nil {
		s.logger.Debug("Relay service: delivery dropped",
			"recipient_id", recipientID,
			"conn_id", conn.ID(),
			"error", err.Error())
		s.metrics.Delivery(metrics.OutcomeFailed)
		return
	}

	s.metrics.Delivery(metrics.OutcomeDelivered)
}
