package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttachmentStore defines persistence operations for attachment metadata.
type AttachmentStore interface {
	Create(ctx context.Context, attachment Attachment) (Attachment, error)
	GetByID(ctx context.Context, id uuid.UUID) (Attachment, error)
}

// Attachment describes a binary payload kept in object storage.
type Attachment struct {
	ID          uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	S3Key       string
	CreatedAt   time.Time
}

// AttachmentView is an attachment with its payload loaded.
type AttachmentView struct {
	ID          string `json:"_id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"buffer"`
}
