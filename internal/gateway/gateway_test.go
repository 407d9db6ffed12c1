package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"ChatNotFound", errors.New("telego: sendMessage: api: 400 Bad Request: chat not found"), CodeChatNotFound},
		{"BotBlocked", errors.New("telego: sendMessage: api: 403 Forbidden: bot was blocked by the user"), CodeChatNotFound},
		{"Deactivated", errors.New("telego: sendMessage: api: 403 Forbidden: user is deactivated"), CodeChatNotFound},
		{"CantInitiate", errors.New("telego: sendMessage: api: 403 Forbidden: bot can't initiate conversation with a user"), CodeChatNotFound},
		{"UserNotFound", errors.New("telego: sendMessage: api: 400 Bad Request: user not found"), CodeUserNotFound},
		{"Transport", errors.New("connection reset by peer"), CodeOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.err))
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("chat not found")
	err := &Error{Code: CodeChatNotFound, Op: "SendToUser", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "SendToUser")

	wrapped := fmt.Errorf("broadcast to 42: %w", err)
	assert.Equal(t, CodeChatNotFound, CodeOf(wrapped))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeOther, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeOther, CodeOf(nil))
}
