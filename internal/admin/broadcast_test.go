package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"support-bot/internal/gateway"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInitiatorID = int64(99999)

// recordingGateway records every outbound text per user id. Recipients in
// failWith get the configured error instead of a delivery.
type recordingGateway struct {
	mu       sync.Mutex
	sent     map[int64][]string
	failWith map[int64]error
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{
		sent:     make(map[int64][]string),
		failWith: make(map[int64]error),
	}
}

func (g *recordingGateway) SendToUser(_ context.Context, userID int64, text string, _ gateway.Format) (gateway.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failWith[userID]; ok {
		return gateway.MessageRef{}, err
	}
	g.sent[userID] = append(g.sent[userID], text)
	return gateway.MessageRef{ID: "1", ChatID: userID}, nil
}

func (g *recordingGateway) SendToChannel(context.Context, int64, string, gateway.Format) (gateway.MessageRef, error) {
	return gateway.MessageRef{}, nil
}

func (g *recordingGateway) EditMessage(context.Context, int64, string, string, gateway.Format) error {
	return nil
}

func (g *recordingGateway) SendMenu(context.Context, int64, string, gateway.Format, [][]gateway.Button) (gateway.MessageRef, error) {
	return gateway.MessageRef{}, nil
}

func (g *recordingGateway) EditMenu(context.Context, int64, string, string, gateway.Format, [][]gateway.Button) error {
	return nil
}

func (g *recordingGateway) AnswerCallback(context.Context, string, string, bool) error {
	return nil
}

func (g *recordingGateway) SendFile(context.Context, int64, string, string) (gateway.MessageRef, error) {
	return gateway.MessageRef{}, nil
}

func (g *recordingGateway) messagesTo(userID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sent[userID]...)
}

func newTestBroadcaster(t *testing.T, gw gateway.Gateway, progressEvery int) *Broadcaster {
	t.Helper()
	// Rate 0 disables pacing so tests run instantly.
	b, err := NewBroadcaster(gw, 0, progressEvery, zerolog.Nop())
	require.NoError(t, err)
	return b
}

func TestBroadcastRun(t *testing.T) {
	ctx := context.Background()

	t.Run("AllDelivered", func(t *testing.T) {
		gw := newRecordingGateway()
		b := newTestBroadcaster(t, gw, 10)

		b.Run(ctx, testInitiatorID, "Привет", []int64{1, 2, 3})

		for _, id := range []int64{1, 2, 3} {
			assert.Equal(t, []string{"Привет"}, gw.messagesTo(id))
		}
		reports := gw.messagesTo(testInitiatorID)
		require.NotEmpty(t, reports)
		final := reports[len(reports)-1]
		assert.Contains(t, final, "Доставлено: 3/3")
		assert.NotContains(t, final, "Не активировали")
	})

	t.Run("ChatNotFoundCollected", func(t *testing.T) {
		gw := newRecordingGateway()
		gw.failWith[2] = &gateway.Error{Code: gateway.CodeChatNotFound, Op: "sendToUser", Err: fmt.Errorf("chat not found")}
		b := newTestBroadcaster(t, gw, 10)

		b.Run(ctx, testInitiatorID, "Привет", []int64{1, 2, 3})

		assert.Empty(t, gw.messagesTo(2))
		reports := gw.messagesTo(testInitiatorID)
		require.NotEmpty(t, reports)
		final := reports[len(reports)-1]
		assert.Contains(t, final, "Доставлено: 2/3")
		assert.Contains(t, final, "Не активировали бота (1): 2")
	})

	t.Run("UserNotFoundCollected", func(t *testing.T) {
		gw := newRecordingGateway()
		gw.failWith[3] = &gateway.Error{Code: gateway.CodeUserNotFound, Op: "sendToUser", Err: fmt.Errorf("user not found")}
		b := newTestBroadcaster(t, gw, 10)

		b.Run(ctx, testInitiatorID, "Привет", []int64{1, 3})

		final := lastReport(t, gw)
		assert.Contains(t, final, "Доставлено: 1/2")
		assert.Contains(t, final, "Не найдены (1): 3")
	})

	t.Run("UnclassifiedErrorOnlyLogged", func(t *testing.T) {
		gw := newRecordingGateway()
		gw.failWith[2] = fmt.Errorf("connection reset")
		b := newTestBroadcaster(t, gw, 10)

		b.Run(ctx, testInitiatorID, "Привет", []int64{1, 2, 3})

		final := lastReport(t, gw)
		assert.Contains(t, final, "Доставлено: 2/3")
		assert.NotContains(t, final, "Не активировали")
		assert.NotContains(t, final, "Не найдены")
	})

	t.Run("ProgressCadence", func(t *testing.T) {
		gw := newRecordingGateway()
		b := newTestBroadcaster(t, gw, 10)

		recipients := make([]int64, 97)
		for i := range recipients {
			recipients[i] = int64(1000 + i)
		}

		b.Run(ctx, testInitiatorID, "Привет", recipients)

		var progress []string
		for _, report := range gw.messagesTo(testInitiatorID) {
			if strings.Contains(report, "Прогресс") {
				progress = append(progress, report)
			}
		}
		// Reports after 10, 20, ... 90 recipients plus one at the last.
		require.Len(t, progress, 10)
		assert.Contains(t, progress[0], "(10/97)")
		assert.Contains(t, progress[8], "(90/97)")
		assert.Contains(t, progress[9], "(97/97)")
		assert.Contains(t, progress[9], "100%")
	})

	t.Run("ManyFailuresPreviewTruncated", func(t *testing.T) {
		gw := newRecordingGateway()
		for id := int64(1); id <= 7; id++ {
			gw.failWith[id] = &gateway.Error{Code: gateway.CodeChatNotFound, Op: "sendToUser", Err: fmt.Errorf("chat not found")}
		}
		b := newTestBroadcaster(t, gw, 100)

		b.Run(ctx, testInitiatorID, "Привет", []int64{1, 2, 3, 4, 5, 6, 7, 8})

		final := lastReport(t, gw)
		assert.Contains(t, final, "Не активировали бота (7): 1, 2, 3, 4, 5 ... (+2)")
	})

	t.Run("NoRecipients", func(t *testing.T) {
		gw := newRecordingGateway()
		b := newTestBroadcaster(t, gw, 10)

		b.Run(ctx, testInitiatorID, "Привет", nil)

		final := lastReport(t, gw)
		assert.Contains(t, final, "Доставлено: 0/0")
	})
}

func lastReport(t *testing.T, gw *recordingGateway) string {
	t.Helper()
	reports := gw.messagesTo(testInitiatorID)
	require.NotEmpty(t, reports)
	return reports[len(reports)-1]
}
