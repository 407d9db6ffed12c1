package relay

import (
	"context"

	"support-bot/internal/database"
)

// Counter derives "replies to the current question" from conversation
// history. The watermark is the most recent user→support message: only
// operator replies strictly after it count, so the counter resets
// implicitly every time the user writes again.
type Counter struct {
	messages database.MessageRepository
}

// NewCounter creates a reply counter over the given message repository.
func NewCounter(messages database.MessageRepository) *Counter {
	return &Counter{messages: messages}
}

// CountRepliesToCurrentQuestion returns the number of operator replies
// since the user's last message, or 0 when the user has not written yet.
func (c *Counter) CountRepliesToCurrentQuestion(ctx context.Context, userID int64) (int64, error) {
	last, err := c.messages.LastUserMessage(ctx, userID)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 0, nil
	}
	return c.messages.CountOperatorRepliesAfter(ctx, userID, last.Timestamp, last.Seq)
}
