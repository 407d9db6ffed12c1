package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"support-bot/internal/gateway"
	msgs "support-bot/pkg/locales"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"
)

const previewLimit = 5

// Broadcaster delivers a message to every recipient one by one, pacing
// sends with a rate limiter and reporting progress back to the initiator.
type Broadcaster struct {
	gw                gateway.Gateway
	messagesPerSecond int
	progressEvery     int
	log               zerolog.Logger
}

// NewBroadcaster creates a Broadcaster. A non-positive messagesPerSecond
// disables pacing; a non-positive progressEvery reports only the final
// summary.
func NewBroadcaster(gw gateway.Gateway, messagesPerSecond, progressEvery int, log zerolog.Logger) (*Broadcaster, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway cannot be nil")
	}
	return &Broadcaster{
		gw:                gw,
		messagesPerSecond: messagesPerSecond,
		progressEvery:     progressEvery,
		log:               log.With().Str("component", "broadcast").Logger(),
	}, nil
}

// Run delivers text to all recipients and reports progress and the final
// summary to the initiator. Failures of individual sends never abort the
// job; they are classified and counted instead.
func (b *Broadcaster) Run(ctx context.Context, initiatorID int64, text string, recipients []int64) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Int64("initiator_id", initiatorID).Msg("broadcast panicked")
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
			if _, err := b.gw.SendToUser(ctx, initiatorID, msgs.MsgBroadcastFailed, gateway.FormatNone); err != nil {
				b.log.Error().Err(err).Msg("failed to notify initiator about broadcast failure")
			}
		}
	}()

	total := len(recipients)
	if total == 0 {
		b.log.Info().Int64("initiator_id", initiatorID).Msg("broadcast has no recipients")
		b.report(ctx, initiatorID, fmt.Sprintf(msgs.MsgBroadcastDoneHeader, 0, 0, 0, 0))
		return
	}

	limiter := ratelimit.NewUnlimited()
	if b.messagesPerSecond > 0 {
		limiter = ratelimit.New(b.messagesPerSecond)
	}

	start := time.Now()
	b.log.Info().Int64("initiator_id", initiatorID).Int("total", total).Msg("broadcast started")

	var (
		sent         int
		notActivated []int64
		notFound     []int64
	)

	for i, userID := range recipients {
		limiter.Take()

		if _, err := b.gw.SendToUser(ctx, userID, text, gateway.FormatNone); err != nil {
			switch gateway.CodeOf(err) {
			case gateway.CodeChatNotFound:
				notActivated = append(notActivated, userID)
			case gateway.CodeUserNotFound:
				notFound = append(notFound, userID)
			default:
				b.log.Warn().Err(err).Int64("user_id", userID).Msg("broadcast send failed")
			}
		} else {
			sent++
		}

		processed := sent + len(notActivated) + len(notFound)
		last := i == total-1
		if b.progressEvery > 0 && ((i+1)%b.progressEvery == 0 || last) {
			percent := processed * 100 / total
			b.report(ctx, initiatorID, fmt.Sprintf(msgs.MsgBroadcastProgress,
				percent, processed, total, sent, len(notActivated), len(notFound)))
		}
	}

	elapsed := time.Since(start)
	summary := fmt.Sprintf(msgs.MsgBroadcastDoneHeader,
		int(elapsed.Minutes()), int(elapsed.Seconds())%60, sent, total)
	if len(notActivated) > 0 {
		summary += "\n" + fmt.Sprintf(msgs.MsgBroadcastNotActivated, len(notActivated), previewIDs(notActivated))
	}
	if len(notFound) > 0 {
		summary += "\n" + fmt.Sprintf(msgs.MsgBroadcastNotFound, len(notFound), previewIDs(notFound))
	}
	b.report(ctx, initiatorID, summary)

	b.log.Info().
		Int64("initiator_id", initiatorID).
		Int("sent", sent).
		Int("not_activated", len(notActivated)).
		Int("not_found", len(notFound)).
		Dur("elapsed", elapsed).
		Msg("broadcast finished")
}

func (b *Broadcaster) report(ctx context.Context, initiatorID int64, text string) {
	if _, err := b.gw.SendToUser(ctx, initiatorID, text, gateway.FormatNone); err != nil {
		b.log.Error().Err(err).Int64("initiator_id", initiatorID).Msg("failed to send broadcast report")
	}
}

// previewIDs renders at most previewLimit ids, noting how many were omitted.
func previewIDs(ids []int64) string {
	shown := ids
	if len(shown) > previewLimit {
		shown = shown[:previewLimit]
	}
	parts := make([]string, len(shown))
	for i, id := range shown {
		parts[i] = strconv.FormatInt(id, 10)
	}
	out := strings.Join(parts, ", ")
	if rest := len(ids) - previewLimit; rest > 0 {
		out += fmt.Sprintf(" ... (+%d)", rest)
	}
	return out
}
