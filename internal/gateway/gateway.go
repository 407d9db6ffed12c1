package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Format selects the text markup of an outbound message.
type Format string

const (
	FormatNone     Format = ""
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Code classifies a send failure. The broadcast report and the relay
// failure handling switch on these instead of matching error text.
type Code string

const (
	// CodeChatNotFound means there is no dialog with the recipient:
	// the user never activated the bot or blocked it.
	CodeChatNotFound Code = "chat_not_found"
	// CodeUserNotFound means the recipient id does not exist.
	CodeUserNotFound Code = "user_not_found"
	// CodeOther covers transport and unclassified API failures.
	CodeOther Code = "other"
)

// Error is the failure type returned by all Gateway send operations.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the failure code from an error returned by a Gateway.
// Errors that did not originate in a Gateway classify as CodeOther.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return CodeOther
}

// MessageRef identifies a message the gateway has sent.
type MessageRef struct {
	ID     string
	ChatID int64
}

// Button is one inline keyboard button carrying a callback payload.
type Button struct {
	Text string
	Data string
}

// Gateway is the outbound side of the chat platform consumed by the core.
// Implementations translate these calls into platform API requests and
// report failures as *Error with a classification Code.
type Gateway interface {
	SendToUser(ctx context.Context, userID int64, text string, format Format) (MessageRef, error)
	SendToChannel(ctx context.Context, chatID int64, text string, format Format) (MessageRef, error)
	EditMessage(ctx context.Context, chatID int64, messageID string, text string, format Format) error
	SendMenu(ctx context.Context, userID int64, text string, format Format, rows [][]Button) (MessageRef, error)
	EditMenu(ctx context.Context, chatID int64, messageID string, text string, format Format, rows [][]Button) error
	AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error
	SendFile(ctx context.Context, chatID int64, path string, caption string) (MessageRef, error)
}
