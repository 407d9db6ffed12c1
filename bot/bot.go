package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"support-bot/internal/admin"
	"support-bot/internal/relay"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"
)

// processTimeout bounds the handling of a single update.
const processTimeout = 30 * time.Second

// Bot owns the long-polling update loop. Updates are processed strictly
// in arrival order: the loop converts each update into a relay event and
// runs the matching scenario to completion before taking the next one.
type Bot struct {
	bot         *telego.Bot
	router      *relay.Router
	adminMgr    *admin.Manager
	debug       bool
	retryDelay  time.Duration
	ratelimiter ratelimit.Limiter
	log         zerolog.Logger
}

// BotDeps holds the dependencies required by the Bot.
type BotDeps struct {
	Bot              *telego.Bot
	Router           *relay.Router
	AdminManager     *admin.Manager
	Debug            bool
	UpdatesPerSecond int
	// ErrorRetryDelay is how long the poller backs off after a transport
	// error before asking for updates again.
	ErrorRetryDelay time.Duration
	Logger          zerolog.Logger
}

// New creates a new Bot instance from its dependencies.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot instance cannot be nil")
	}
	if deps.Router == nil {
		return nil, fmt.Errorf("router cannot be nil")
	}
	if deps.AdminManager == nil {
		return nil, fmt.Errorf("admin manager cannot be nil")
	}

	limiter := ratelimit.NewUnlimited()
	if deps.UpdatesPerSecond > 0 {
		limiter = ratelimit.New(deps.UpdatesPerSecond)
	}

	retryDelay := deps.ErrorRetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}

	return &Bot{
		bot:         deps.Bot,
		router:      deps.Router,
		adminMgr:    deps.AdminManager,
		debug:       deps.Debug,
		retryDelay:  retryDelay,
		ratelimiter: limiter,
		log:         deps.Logger.With().Str("component", "bot").Logger(),
	}, nil
}

// Start begins long polling and processes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, nil,
		telego.WithLongPollingRetryTimeout(b.retryDelay))
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}
	b.log.Info().Msg("update loop started")

	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("update loop stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.log.Info().Msg("updates channel closed")
				return nil
			}
			b.processUpdate(ctx, update)
		}
	}
}

// processUpdate handles one update. A panic in a handler is reported and
// the loop moves on to the next update.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("recovered panic in update processing")
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		b.handleMessage(processingCtx, *update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(processingCtx, *update.CallbackQuery)
	case update.MyChatMember != nil:
		b.handleMyChatMember(processingCtx, *update.MyChatMember)
	default:
		if b.debug {
			b.log.Debug().Int("update_id", update.UpdateID).Msg("ignoring unhandled update type")
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message telego.Message) {
	if message.From == nil {
		// Channel posts and other senderless messages are not routable.
		if b.debug {
			b.log.Debug().Int("message_id", message.MessageID).Msg("ignoring message without sender")
		}
		return
	}
	if message.Text == "" {
		if b.debug {
			b.log.Debug().Int("message_id", message.MessageID).Msg("ignoring non-text message")
		}
		return
	}

	ev := relay.MessageCreated{
		Sender: relay.Peer{
			ID:    message.From.ID,
			Name:  peerName(*message.From),
			IsBot: message.From.IsBot,
		},
		ChatID:    message.Chat.ID,
		Direct:    message.Chat.Type == telego.ChatTypePrivate,
		MessageID: strconv.Itoa(message.MessageID),
		Text:      message.Text,
	}
	if message.ReplyToMessage != nil {
		ev.ReplyTo = strconv.Itoa(message.ReplyToMessage.MessageID)
	}

	b.router.Route(ctx, ev)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query telego.CallbackQuery) {
	if !strings.HasPrefix(query.Data, "admin:") {
		if b.debug {
			b.log.Debug().Str("data", query.Data).Msg("ignoring unknown callback")
		}
		return
	}

	cb := admin.Callback{
		ID:      query.ID,
		AdminID: query.From.ID,
		Payload: query.Data,
	}
	if message, ok := query.Message.(*telego.Message); ok && message != nil {
		cb.ChatID = message.Chat.ID
		cb.MessageID = strconv.Itoa(message.MessageID)
	}

	if err := b.adminMgr.HandleCallback(ctx, cb); err != nil {
		b.log.Error().Err(err).Int64("user_id", query.From.ID).Str("data", query.Data).Msg("callback handling failed")
		sentry.CaptureException(fmt.Errorf("callback %q: %w", query.Data, err))
	}
}

// handleMyChatMember treats a user unblocking or re-opening the private
// dialog as a fresh session.
func (b *Bot) handleMyChatMember(ctx context.Context, updated telego.ChatMemberUpdated) {
	if updated.Chat.Type != telego.ChatTypePrivate {
		return
	}
	if updated.NewChatMember == nil || updated.NewChatMember.MemberStatus() != telego.MemberStatusMember {
		return
	}
	if updated.From.IsBot {
		return
	}

	b.router.Route(ctx, relay.SessionStarted{User: relay.Peer{
		ID:    updated.From.ID,
		Name:  peerName(updated.From),
		IsBot: updated.From.IsBot,
	}})
}

func peerName(user telego.User) string {
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	if name == "" {
		name = user.Username
	}
	return name
}
