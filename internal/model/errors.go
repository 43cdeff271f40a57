package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when signing up with an email that already has an account.
	ErrEmailTaken = errors.New("email already in use")
	// ErrIncorrectPassword is returned when a login secret does not match.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrInvalidMessage is returned when a message lacks a sender or a recipient.
	ErrInvalidMessage = errors.New("message must have sender and recipient")
	// ErrMissingIdentity is returned when a realtime request carries no user identity.
	ErrMissingIdentity = errors.New("user identity is required")
	// ErrInvalidInput is returned when request fields fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConnectionClosed is returned when pushing to a connection that is gone.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned when a connection's outbound queue is full.
	ErrSlowConsumer = errors.New("connection send buffer full")
)
