package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/gophchat-server/internal/model"
)

var _ model.AttachmentStore = (*AttachmentRepository)(nil)

type AttachmentRepository struct {
	db *Connection
}

func NewAttachmentRepository(db *Connection) *AttachmentRepository {
	return &AttachmentRepository{
		db: db,
	}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment model.Attachment) (model.Attachment, error) {
	query := `INSERT INTO attachments (id, file_name, content_type, size, s3_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, file_name, content_type, size, s3_key, created_at`

	var saved model.Attachment
	err := r.db.QueryRow(ctx, query,
		attachment.ID, attachment.FileName, attachment.ContentType,
		attachment.Size, attachment.S3Key, attachment.CreatedAt,
	).Scan(
		&saved.ID, &saved.FileName, &saved.ContentType, &saved.Size, &saved.S3Key, &saved.CreatedAt,
	)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to create attachment: %w", err)
	}

	return saved, nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Attachment, error) {
	query := `SELECT id, file_name, content_type, size, s3_key, created_at
			  FROM attachments WHERE id = $1`

	var attachment model.Attachment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&attachment.ID, &attachment.FileName, &attachment.ContentType,
		&attachment.Size, &attachment.S3Key, &attachment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Attachment{}, model.ErrNotFound
		}
		return model.Attachment{}, fmt.Errorf("failed to get attachment: %w", err)
	}

	return attachment, nil
}
