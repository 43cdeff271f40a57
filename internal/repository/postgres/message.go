package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/gophchat-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	db *Connection
}

func NewMessageRepository(db *Connection) *MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

func (r *MessageRepository) Create(ctx context.Context, message model.Message) (model.Message, error) {
	query := `INSERT INTO messages (id, sender_id, sender_name, recipient_id, text, attachment_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING seq, created_at`

	saved := message
	err := r.db.QueryRow(ctx, query,
		message.ID, message.SenderID, message.SenderName, message.RecipientID,
		message.Text, message.AttachmentID, message.CreatedAt,
	).Scan(&saved.Seq, &saved.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return saved, nil
}

// GetConversation orders by insertion sequence, which is the order the relay accepted the messages in.
func (r *MessageRepository) GetConversation(ctx context.Context, a, b string) ([]model.Message, error) {
	query := `SELECT seq, id, sender_id, sender_name, recipient_id, text, attachment_id, created_at
			  FROM messages
			  WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
			  ORDER BY seq ASC`

	rows, err := r.db.Query(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(
			&m.Seq, &m.ID, &m.SenderID, &m.SenderName, &m.RecipientID,
			&m.Text, &m.AttachmentID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}
