package relay

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"support-bot/internal/auth"
	"support-bot/internal/database"
	"support-bot/internal/gateway"
	"support-bot/internal/locales"
	msgfmt "support-bot/pkg/locales"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// AdminFlow is the slice of the admin state machine the router needs:
// it forwards /admin and, while an administrator is composing a broadcast,
// their raw text input.
type AdminFlow interface {
	AwaitingText(adminID int64) bool
	HandleText(ctx context.Context, adminID int64, text string) error
	SendMainMenu(ctx context.Context, adminID int64) error
}

// Exporter builds the /export workbook and returns its path.
type Exporter interface {
	ExportAll(ctx context.Context) (string, error)
}

// phoneRe accepts an international or local phone number, optionally with
// separators, sent as the entire message.
var phoneRe = regexp.MustCompile(`^\+?\d[\d\s\-()]{9,17}$`)

// Router classifies inbound events and drives the relay between users and
// the support chat. It is side-effecting only: failures are logged and the
// next event proceeds.
type Router struct {
	gw            gateway.Gateway
	users         database.UserRepository
	messages      database.MessageRepository
	mappings      database.MappingRepository
	counter       *Counter
	adminChecker  auth.AdminCheckerInterface
	adminFlow     AdminFlow
	exporter      Exporter
	supportChatID int64
	log           zerolog.Logger
}

// RouterDeps holds the dependencies required by the Router.
type RouterDeps struct {
	Gateway       gateway.Gateway
	Users         database.UserRepository
	Messages      database.MessageRepository
	Mappings      database.MappingRepository
	Counter       *Counter
	AdminChecker  auth.AdminCheckerInterface
	AdminFlow     AdminFlow
	Exporter      Exporter
	SupportChatID int64
	Logger        zerolog.Logger
}

// NewRouter creates a Router from its dependencies.
func NewRouter(deps RouterDeps) (*Router, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("gateway cannot be nil")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	if deps.Messages == nil {
		return nil, fmt.Errorf("message repository cannot be nil")
	}
	if deps.Mappings == nil {
		return nil, fmt.Errorf("mapping repository cannot be nil")
	}
	if deps.Counter == nil {
		return nil, fmt.Errorf("reply counter cannot be nil")
	}
	if deps.AdminChecker == nil {
		return nil, fmt.Errorf("admin checker cannot be nil")
	}
	if deps.AdminFlow == nil {
		return nil, fmt.Errorf("admin flow cannot be nil")
	}
	if deps.Exporter == nil {
		return nil, fmt.Errorf("exporter cannot be nil")
	}
	if deps.SupportChatID == 0 {
		return nil, fmt.Errorf("support chat id cannot be zero")
	}
	return &Router{
		gw:            deps.Gateway,
		users:         deps.Users,
		messages:      deps.Messages,
		mappings:      deps.Mappings,
		counter:       deps.Counter,
		adminChecker:  deps.AdminChecker,
		adminFlow:     deps.AdminFlow,
		exporter:      deps.Exporter,
		supportChatID: deps.SupportChatID,
		log:           deps.Logger.With().Str("component", "router").Logger(),
	}, nil
}

// Route classifies one inbound event and runs the matching scenario.
// First match wins; events matching nothing produce no side effect.
func (r *Router) Route(ctx context.Context, event Event) {
	switch ev := event.(type) {
	case MessageCreated:
		r.routeMessage(ctx, ev)
	case SessionStarted:
		r.handleStart(ctx, ev.User)
	}
}

func (r *Router) routeMessage(ctx context.Context, ev MessageCreated) {
	if ev.ChatID == r.supportChatID {
		r.routeSupportChat(ctx, ev)
		return
	}
	if !ev.Direct {
		return
	}

	command := strings.ToLower(strings.TrimSpace(ev.Text))
	if command == "/start" || command == "/hello" {
		r.handleStart(ctx, ev.Sender)
		return
	}

	if isAdmin, err := r.adminChecker.IsAdmin(ctx, ev.Sender.ID); err == nil && isAdmin {
		if command == "/admin" {
			if err := r.adminFlow.SendMainMenu(ctx, ev.Sender.ID); err != nil {
				r.log.Error().Err(err).Int64("admin_id", ev.Sender.ID).Msg("failed to send admin menu")
			}
			return
		}
		if r.adminFlow.AwaitingText(ev.Sender.ID) {
			if err := r.adminFlow.HandleText(ctx, ev.Sender.ID, ev.Text); err != nil {
				r.log.Error().Err(err).Int64("admin_id", ev.Sender.ID).Msg("failed to handle broadcast text")
				sentry.CaptureException(err)
			}
			return
		}
	}

	if ev.Sender.IsBot {
		return
	}

	r.handleUserMessage(ctx, ev.Sender, ev.Text)
}

func (r *Router) routeSupportChat(ctx context.Context, ev MessageCreated) {
	switch {
	case !ev.Sender.IsBot && ev.ReplyTo != "":
		r.handleOperatorReply(ctx, ev)
	case strings.TrimSpace(ev.Text) == "/export":
		r.handleExport(ctx)
	default:
		r.log.Debug().Int64("sender", ev.Sender.ID).Msg("ignoring support chat message")
	}
}

// handleStart registers the user and sends the welcome prompt, personalized
// on whether a phone number is already on file.
func (r *Router) handleStart(ctx context.Context, sender Peer) {
	user, err := r.users.Upsert(ctx, sender.ID, sender.Name)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to register user")
		sentry.CaptureException(err)
		return
	}
	r.log.Info().Int64("user_id", sender.ID).Str("name", sender.Name).Msg("start scenario")

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	welcomeID := "MsgWelcome"
	if user.PhoneNumber != "" {
		welcomeID = "MsgWelcomeKnownPhone"
	}
	welcome := locales.GetMessage(localizer, welcomeID, map[string]interface{}{"Name": sender.Name}, nil)
	if _, err := r.gw.SendToUser(ctx, sender.ID, welcome, gateway.FormatNone); err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to send welcome")
		return
	}

	prompt := locales.GetMessage(localizer, "MsgAskQuestion", nil, nil)
	if _, err := r.gw.SendToUser(ctx, sender.ID, prompt, gateway.FormatNone); err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to send question prompt")
	}
}

// handleUserMessage persists a user question and forwards it to the support
// chat with the running reply count, then stores the message mapping.
func (r *Router) handleUserMessage(ctx context.Context, sender Peer, text string) {
	user, err := r.users.Upsert(ctx, sender.ID, sender.Name)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to update user")
		sentry.CaptureException(err)
		return
	}

	if trimmed := strings.TrimSpace(text); phoneRe.MatchString(trimmed) && user.PhoneNumber == "" {
		r.handlePhone(ctx, sender.ID, trimmed)
		return
	}

	if _, err := r.messages.SaveUserMessage(ctx, sender.ID, text); err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to persist user message")
		sentry.CaptureException(err)
		return
	}

	count, err := r.counter.CountRepliesToCurrentQuestion(ctx, sender.ID)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to count replies")
		count = 0
	}

	forward := fmt.Sprintf(msgfmt.MsgForwardedQuestion, sender.Name, sender.ID, sender.ID, text, count)
	ref, err := r.gw.SendToChannel(ctx, r.supportChatID, forward, gateway.FormatMarkdown)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", sender.ID).Msg("failed to forward to support chat")
		sentry.CaptureException(err)
		return
	}

	if _, err := r.mappings.Save(ctx, ref.ID, sender.ID, sender.Name, text); err != nil {
		r.log.Error().Err(err).Str("message_id", ref.ID).Msg("failed to save message mapping")
		sentry.CaptureException(err)
		return
	}
	r.log.Info().Int64("user_id", sender.ID).Str("message_id", ref.ID).Msg("question forwarded")
}

func (r *Router) handlePhone(ctx context.Context, userID int64, phone string) {
	if err := r.users.SetPhone(ctx, userID, phone); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("failed to save phone number")
		return
	}
	r.log.Info().Int64("user_id", userID).Msg("phone number saved")

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	ack := locales.GetMessage(localizer, "MsgPhoneSaved", nil, nil)
	if _, err := r.gw.SendToUser(ctx, userID, ack, gateway.FormatNone); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("failed to acknowledge phone")
	}
}

// handleOperatorReply threads a support chat reply back to the user the
// replied-to message was forwarded for. A missing mapping is a no-op: the
// replied-to message predates mapping retention or belongs to another bot.
func (r *Router) handleOperatorReply(ctx context.Context, ev MessageCreated) {
	mapping, err := r.mappings.Get(ctx, ev.ReplyTo)
	if err != nil {
		if errors.Is(err, database.ErrMappingNotFound) {
			r.log.Debug().Str("message_id", ev.ReplyTo).Msg("no mapping for replied message")
			return
		}
		r.log.Error().Err(err).Str("message_id", ev.ReplyTo).Msg("failed to look up mapping")
		sentry.CaptureException(err)
		return
	}

	if _, err := r.messages.SaveOperatorMessage(ctx, mapping.UserID, ev.Text, ev.Sender.Name); err != nil {
		r.log.Error().Err(err).Int64("user_id", mapping.UserID).Msg("failed to persist operator reply")
		sentry.CaptureException(err)
		return
	}

	reply := fmt.Sprintf(msgfmt.MsgOperatorReply, ev.Text)
	if _, err := r.gw.SendToUser(ctx, mapping.UserID, reply, gateway.FormatNone); err != nil {
		r.log.Error().Err(err).Int64("user_id", mapping.UserID).Msg("failed to deliver operator reply")
	} else {
		r.log.Info().
			Int64("user_id", mapping.UserID).
			Str("operator", ev.Sender.Name).
			Msg("operator reply delivered")
	}

	// Refresh the reply counter shown under the forwarded question.
	count, err := r.counter.CountRepliesToCurrentQuestion(ctx, mapping.UserID)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", mapping.UserID).Msg("failed to recount replies")
		return
	}
	updated := fmt.Sprintf(msgfmt.MsgForwardedQuestion,
		mapping.UserName, mapping.UserID, mapping.UserID, mapping.QuestionText, count)
	if err := r.gw.EditMessage(ctx, r.supportChatID, mapping.MessageID, updated, gateway.FormatMarkdown); err != nil {
		r.log.Debug().Err(err).Str("message_id", mapping.MessageID).Msg("failed to update reply counter")
	}
}

func (r *Router) handleExport(ctx context.Context) {
	path, err := r.exporter.ExportAll(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("export failed")
		sentry.CaptureException(err)
		localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
		failure := locales.GetMessage(localizer, "MsgExportFailed", nil, nil)
		_, _ = r.gw.SendToChannel(ctx, r.supportChatID, failure, gateway.FormatNone)
		return
	}
	if _, err := r.gw.SendFile(ctx, r.supportChatID, path, msgfmt.MsgExportCaption); err != nil {
		r.log.Error().Err(err).Str("path", path).Msg("failed to send export file")
		sentry.CaptureException(err)
	}
}
