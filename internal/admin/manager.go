package admin

import (
	"context"
	"fmt"

	"support-bot/internal/auth"
	"support-bot/internal/database"
	"support-bot/internal/gateway"
	"support-bot/internal/locales"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog"
)

// Callback payloads of the admin menu buttons.
const (
	CallbackNotify       = "admin:notify"
	CallbackTargetAdmins = "admin:target:admins"
	CallbackTargetAll    = "admin:target:all"
	CallbackConfirm      = "admin:confirm"
	CallbackCancel       = "admin:cancel"
	CallbackBack         = "admin:back"
)

// Callback is one inline button press, stripped to what the manager needs.
type Callback struct {
	ID        string
	AdminID   int64
	ChatID    int64
	MessageID string
	Payload   string
}

// BroadcastRunner executes a confirmed broadcast. Run is expected to be
// long-running; the manager launches it on its own goroutine.
type BroadcastRunner interface {
	Run(ctx context.Context, initiatorID int64, text string, recipients []int64)
}

// Manager drives the per-administrator broadcast-composition dialog:
// idle → awaiting text → confirming → sending → idle.
type Manager struct {
	gw      gateway.Gateway
	users   database.UserRepository
	checker auth.AdminCheckerInterface
	runner  BroadcastRunner
	states  *stateStore
	log     zerolog.Logger
}

// ManagerDeps holds the dependencies required by the Manager.
type ManagerDeps struct {
	Gateway      gateway.Gateway
	Users        database.UserRepository
	AdminChecker auth.AdminCheckerInterface
	Runner       BroadcastRunner
	Logger       zerolog.Logger
}

// NewManager creates a Manager from its dependencies.
func NewManager(deps ManagerDeps) (*Manager, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("gateway cannot be nil")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	if deps.AdminChecker == nil {
		return nil, fmt.Errorf("admin checker cannot be nil")
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("broadcast runner cannot be nil")
	}
	return &Manager{
		gw:      deps.Gateway,
		users:   deps.Users,
		checker: deps.AdminChecker,
		runner:  deps.Runner,
		states:  newStateStore(),
		log:     deps.Logger.With().Str("component", "admin").Logger(),
	}, nil
}

// AwaitingText reports whether the administrator's next text message is
// broadcast content.
func (m *Manager) AwaitingText(adminID int64) bool {
	return m.states.get(adminID).State == StateAwaitingText
}

// ContextOf returns a snapshot of the administrator's dialog context.
func (m *Manager) ContextOf(adminID int64) Context {
	return m.states.get(adminID)
}

// SendMainMenu sends the admin panel entry menu.
func (m *Manager) SendMainMenu(ctx context.Context, adminID int64) error {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	text := locales.GetMessage(localizer, "MsgAdminMainMenu", nil, nil)
	rows := [][]gateway.Button{{
		{Text: locales.GetMessage(localizer, "BtnSendNotification", nil, nil), Data: CallbackNotify},
	}}
	_, err := m.gw.SendMenu(ctx, adminID, text, gateway.FormatMarkdown, rows)
	return err
}

// HandleCallback processes an inline button press from the admin menus.
// Non-administrators are rejected with an access-denied notice and no
// state change.
func (m *Manager) HandleCallback(ctx context.Context, cb Callback) error {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	isAdmin, err := m.checker.IsAdmin(ctx, cb.AdminID)
	if err != nil {
		return fmt.Errorf("admin check failed: %w", err)
	}
	if !isAdmin {
		denied := locales.GetMessage(localizer, "MsgAccessDenied", nil, nil)
		if err := m.gw.AnswerCallback(ctx, cb.ID, denied, true); err != nil {
			m.log.Error().Err(err).Int64("user_id", cb.AdminID).Msg("failed to answer denied callback")
		}
		m.log.Info().Int64("user_id", cb.AdminID).Msg("admin callback denied")
		return nil
	}

	switch cb.Payload {
	case CallbackNotify:
		return m.showAudienceMenu(ctx, cb, localizer)
	case CallbackBack:
		m.states.reset(cb.AdminID)
		return m.showMainMenu(ctx, cb, localizer)
	case CallbackTargetAdmins:
		return m.startComposition(ctx, cb, localizer, AudienceAdmins)
	case CallbackTargetAll:
		return m.startComposition(ctx, cb, localizer, AudienceAllUsers)
	case CallbackConfirm:
		return m.confirmAndSend(ctx, cb, localizer)
	case CallbackCancel:
		return m.cancel(ctx, cb, localizer)
	default:
		m.log.Debug().Str("payload", cb.Payload).Msg("unknown admin callback")
		return nil
	}
}

// HandleText receives the broadcast text while the administrator is in the
// awaiting-text state and advances the dialog to confirmation.
func (m *Manager) HandleText(ctx context.Context, adminID int64, text string) error {
	state := m.states.get(adminID)
	if state.State != StateAwaitingText {
		return nil
	}
	m.states.saveText(adminID, text)

	count, err := m.recipientCount(ctx, state.Audience)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient count: %w", err)
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	preview := locales.GetMessage(localizer, "MsgAdminPreview", map[string]interface{}{
		"Text":  text,
		"Count": count,
	}, nil)
	rows := [][]gateway.Button{{
		{Text: locales.GetMessage(localizer, "BtnConfirmSend", nil, nil), Data: CallbackConfirm},
		{Text: locales.GetMessage(localizer, "BtnCancelSend", nil, nil), Data: CallbackCancel},
	}}
	if _, err := m.gw.SendMenu(ctx, adminID, preview, gateway.FormatMarkdown, rows); err != nil {
		return fmt.Errorf("failed to send preview: %w", err)
	}
	m.log.Info().Int64("admin_id", adminID).Msg("broadcast text received")
	return nil
}

func (m *Manager) showMainMenu(ctx context.Context, cb Callback, localizer *i18n.Localizer) error {
	text := locales.GetMessage(localizer, "MsgAdminMainMenu", nil, nil)
	rows := [][]gateway.Button{{
		{Text: locales.GetMessage(localizer, "BtnSendNotification", nil, nil), Data: CallbackNotify},
	}}
	if err := m.gw.EditMenu(ctx, cb.ChatID, cb.MessageID, text, gateway.FormatMarkdown, rows); err != nil {
		return err
	}
	return m.gw.AnswerCallback(ctx, cb.ID, "", false)
}

func (m *Manager) showAudienceMenu(ctx context.Context, cb Callback, localizer *i18n.Localizer) error {
	text := locales.GetMessage(localizer, "MsgAdminAudienceMenu", nil, nil)
	rows := [][]gateway.Button{
		{
			{Text: locales.GetMessage(localizer, "BtnAudienceAdmins", nil, nil), Data: CallbackTargetAdmins},
			{Text: locales.GetMessage(localizer, "BtnAudienceAllUsers", nil, nil), Data: CallbackTargetAll},
		},
		{
			{Text: locales.GetMessage(localizer, "BtnBack", nil, nil), Data: CallbackBack},
		},
	}
	if err := m.gw.EditMenu(ctx, cb.ChatID, cb.MessageID, text, gateway.FormatMarkdown, rows); err != nil {
		return err
	}
	return m.gw.AnswerCallback(ctx, cb.ID, "", false)
}

func (m *Manager) startComposition(ctx context.Context, cb Callback, localizer *i18n.Localizer, audience Audience) error {
	m.states.set(cb.AdminID, Context{State: StateAwaitingText, Audience: audience})

	promptID := "MsgAdminPromptAllUsers"
	if audience == AudienceAdmins {
		promptID = "MsgAdminPromptAdmins"
	}
	prompt := locales.GetMessage(localizer, promptID, nil, nil)
	if err := m.gw.EditMessage(ctx, cb.ChatID, cb.MessageID, prompt, gateway.FormatMarkdown); err != nil {
		return err
	}
	m.log.Info().Int64("admin_id", cb.AdminID).Str("audience", string(audience)).Msg("awaiting broadcast text")
	return m.gw.AnswerCallback(ctx, cb.ID, "", false)
}

// confirmAndSend hands the composed broadcast to the runner and resets the
// dialog. The runner is detached: this callback returns immediately.
func (m *Manager) confirmAndSend(ctx context.Context, cb Callback, localizer *i18n.Localizer) error {
	state := m.states.get(cb.AdminID)
	if state.State != StateConfirming || state.Text == "" {
		missing := locales.GetMessage(localizer, "MsgBroadcastMissingText", nil, nil)
		return m.gw.AnswerCallback(ctx, cb.ID, missing, true)
	}

	recipients, err := m.recipients(ctx, state.Audience)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}

	m.states.set(cb.AdminID, Context{State: StateSending, Audience: state.Audience})
	m.states.reset(cb.AdminID)

	m.log.Info().
		Int64("admin_id", cb.AdminID).
		Str("audience", string(state.Audience)).
		Int("recipients", len(recipients)).
		Msg("broadcast confirmed")

	// Detached from the event-processing path: the job owns its lifetime
	// and reports back only through outbound messages.
	go m.runner.Run(context.WithoutCancel(ctx), cb.AdminID, state.Text, recipients)

	started := locales.GetMessage(localizer, "MsgBroadcastStarted", nil, nil)
	return m.gw.AnswerCallback(ctx, cb.ID, started, false)
}

func (m *Manager) cancel(ctx context.Context, cb Callback, localizer *i18n.Localizer) error {
	m.states.reset(cb.AdminID)
	m.log.Info().Int64("admin_id", cb.AdminID).Msg("broadcast cancelled")

	cancelled := locales.GetMessage(localizer, "MsgBroadcastCancelled", nil, nil)
	if err := m.gw.AnswerCallback(ctx, cb.ID, cancelled, false); err != nil {
		return err
	}
	return m.showAudienceMenuAfterCancel(ctx, cb, localizer)
}

func (m *Manager) showAudienceMenuAfterCancel(ctx context.Context, cb Callback, localizer *i18n.Localizer) error {
	text := locales.GetMessage(localizer, "MsgAdminAudienceMenu", nil, nil)
	rows := [][]gateway.Button{
		{
			{Text: locales.GetMessage(localizer, "BtnAudienceAdmins", nil, nil), Data: CallbackTargetAdmins},
			{Text: locales.GetMessage(localizer, "BtnAudienceAllUsers", nil, nil), Data: CallbackTargetAll},
		},
		{
			{Text: locales.GetMessage(localizer, "BtnBack", nil, nil), Data: CallbackBack},
		},
	}
	return m.gw.EditMenu(ctx, cb.ChatID, cb.MessageID, text, gateway.FormatMarkdown, rows)
}

func (m *Manager) recipients(ctx context.Context, audience Audience) ([]int64, error) {
	if audience == AudienceAdmins {
		return m.checker.AdminIDs(), nil
	}
	return m.users.AllIDs(ctx)
}

func (m *Manager) recipientCount(ctx context.Context, audience Audience) (int, error) {
	recipients, err := m.recipients(ctx, audience)
	if err != nil {
		return 0, err
	}
	return len(recipients), nil
}
