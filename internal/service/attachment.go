package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/model"
)

const attachmentKeyPrefix = "attachments/"

// attachments stores attachment payloads and resolves message references back into content.
type attachments struct {
	store   model.AttachmentStore
	storage model.Storage
	logger  *logger.Logger
}

func newAttachments(store model.AttachmentStore, storage model.Storage, logger *logger.Logger) *attachments {
	return &attachments{store: store, storage: storage, logger: logger}
}

// save uploads the payload and records its metadata.
func (a *attachments) save(ctx context.Context, data []byte, fileName string) (model.Attachment, error) {
	id := uuid.New()
	attachment := model.Attachment{
		ID:          id,
		FileName:    fileName,
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		S3Key:       attachmentKeyPrefix + id.String(),
		CreatedAt:   time.Now(),
	}

	err := a.storage.Upload(ctx, attachment.S3Key, bytes.NewReader(data), attachment.Size, attachment.ContentType)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to upload attachment: %w", err)
	}

	saved, err := a.store.Create(ctx, attachment)
	if err != nil {
		if delErr := a.storage.Delete(ctx, attachment.S3Key); delErr != nil {
			a.logger.Warn("Attachments: failed to remove orphaned object",
				"key", attachment.S3Key,
				"error", delErr.Error())
		}
		return model.Attachment{}, fmt.Errorf("failed to save attachment: %w", err)
	}

	return saved, nil
}

// load reads the attachment metadata and payload.
func (a *attachments) load(ctx context.Context, id uuid.UUID) (model.AttachmentView, error) {
	attachment, err := a.store.GetByID(ctx, id)
	if err != nil {
		return model.AttachmentView{}, fmt.Errorf("failed to get attachment: %w", err)
	}

	reader, err := a.storage.Download(ctx, attachment.S3Key)
	if err != nil {
		return model.AttachmentView{}, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return model.AttachmentView{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	return model.AttachmentView{
		ID:          attachment.ID.String(),
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		Data:        data,
	}, nil
}

// resolve expands msg into its view. When the referenced attachment is gone the
// view is still returned, without attachment, together with an error wrapping
// model.ErrNotFound.
func (a *attachments) resolve(ctx context.Context, msg model.Message) (model.ResolvedMessage, error) {
	resolved := model.ResolvedMessage{
		ID:          msg.ID.String(),
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		RecipientID: msg.RecipientID,
		Text:        msg.Text,
		CreatedAt:   msg.CreatedAt,
	}
	if msg.AttachmentID == nil {
		return resolved, nil
	}

	view, err := a.load(ctx, *msg.AttachmentID)
	if errors.Is(err, model.ErrNotFound) {
		return resolved, err
	}
	if err != nil {
		return model.ResolvedMessage{}, err
	}

	resolved.Attachment = &view
	return resolved, nil
}
