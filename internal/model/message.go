package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageStore defines persistence operations for messages.
type MessageStore interface {
	Create(ctx context.Context, message Message) (Message, error)
	// GetConversation returns messages exchanged between a and b in either
	// direction, oldest first.
	GetConversation(ctx context.Context, a, b string) ([]Message, error)
}

// Message is a persisted chat message. It is never mutated after creation.
type Message struct {
	ID           uuid.UUID
	Seq          int64
	SenderID     string
	SenderName   string
	RecipientID  string
	Text         string
	AttachmentID *uuid.UUID
	CreatedAt    time.Time
}

// ResolvedMessage is a message with its attachment reference expanded into content.
type ResolvedMessage struct {
	ID          string          `json:"_id"`
	SenderID    string          `json:"senderId"`
	SenderName  string          `json:"senderName,omitempty"`
	RecipientID string          `json:"recipientId"`
	Text        string          `json:"text"`
	Attachment  *AttachmentView `json:"attachment,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SubmitParams contains an inbound message as sent by a client.
type SubmitParams struct {
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName,omitempty"`
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`

	// Payload is the raw client payload, relayed verbatim to the recipient.
	Payload json.RawMessage `json:"-"`
}

// Validate checks that both routing identities are present.
func (p SubmitParams) Validate() error {
	if p.SenderID == "" || p.RecipientID == "" {
		return ErrInvalidMessage
	}
	return nil
}

// HistoryRequest asks for the conversation between the requester and a counterpart.
// The wire names are senderId/recipientId: the requester always identifies itself as sender.
type HistoryRequest struct {
	RequesterID   string `json:"senderId"`
	CounterpartID string `json:"recipientId"`
}

// Validate checks that both participants are present.
func (r HistoryRequest) Validate() error {
	if r.RequesterID == "" || r.CounterpartID == "" {
		return ErrMissingIdentity
	}
	return nil
}
