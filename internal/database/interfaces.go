package database

import (
	"context"
	"errors"
	"time"

	"support-bot/internal/database/models"
)

// ErrUserNotFound is returned when a user id has no record.
var ErrUserNotFound = errors.New("user not found")

// ErrMappingNotFound is returned when a support-chat message id has no mapping.
var ErrMappingNotFound = errors.New("message mapping not found")

// UserRepository defines persistence for bot users.
type UserRepository interface {
	// Upsert creates the user on first contact or refreshes name and
	// last-contact on a repeat one. Returns the stored record.
	Upsert(ctx context.Context, userID int64, name string) (*models.User, error)
	// SetPhone stores the user's phone number.
	SetPhone(ctx context.Context, userID int64, phone string) error
	// Get returns the user or ErrUserNotFound.
	Get(ctx context.Context, userID int64) (*models.User, error)
	// All returns every known user ordered by first contact.
	All(ctx context.Context) ([]models.User, error)
	// AllIDs returns the ids of every known user ordered by first contact.
	AllIDs(ctx context.Context) ([]int64, error)
}

// MessageRepository defines append + query persistence for conversation history.
type MessageRepository interface {
	// SaveUserMessage appends a user→support message.
	SaveUserMessage(ctx context.Context, userID int64, text string) (*models.Message, error)
	// SaveOperatorMessage appends an operator→user reply.
	SaveOperatorMessage(ctx context.Context, userID int64, text, operatorName string) (*models.Message, error)
	// UserMessages returns the user's history, newest first, up to limit.
	UserMessages(ctx context.Context, userID int64, limit int64) ([]models.Message, error)
	// LastUserMessage returns the most recent user→support message,
	// or (nil, nil) when the user has not written yet.
	LastUserMessage(ctx context.Context, userID int64) (*models.Message, error)
	// CountOperatorRepliesAfter counts operator→user messages strictly
	// after the (after, afterSeq) watermark.
	CountOperatorRepliesAfter(ctx context.Context, userID int64, after time.Time, afterSeq int64) (int64, error)
	// CountOperatorReplies counts all operator→user messages for the user.
	CountOperatorReplies(ctx context.Context, userID int64) (int64, error)
	// AllMessages returns the whole history across users, oldest first.
	AllMessages(ctx context.Context) ([]models.Message, error)
}

// MappingRepository defines upsert + point-lookup persistence for message mappings.
type MappingRepository interface {
	// Save upserts the mapping keyed by messageID; last write wins.
	// After Save returns, Get with the same key observes the write.
	Save(ctx context.Context, messageID string, userID int64, userName, questionText string) (*models.MessageMapping, error)
	// Get returns the mapping or ErrMappingNotFound.
	Get(ctx context.Context, messageID string) (*models.MessageMapping, error)
}
