package gateway

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Telegram implements Gateway on top of a telego bot instance.
type Telegram struct {
	bot *telego.Bot
}

// NewTelegram wraps a telego bot. The bot instance cannot be nil.
func NewTelegram(bot *telego.Bot) *Telegram {
	return &Telegram{bot: bot}
}

func (t *Telegram) SendToUser(ctx context.Context, userID int64, text string, format Format) (MessageRef, error) {
	return t.send(ctx, "SendToUser", userID, text, format)
}

func (t *Telegram) SendToChannel(ctx context.Context, chatID int64, text string, format Format) (MessageRef, error) {
	return t.send(ctx, "SendToChannel", chatID, text, format)
}

func (t *Telegram) send(ctx context.Context, op string, chatID int64, text string, format Format) (MessageRef, error) {
	params := tu.Message(tu.ID(chatID), text)
	if mode := parseMode(format); mode != "" {
		params = params.WithParseMode(mode)
	}
	msg, err := t.bot.SendMessage(ctx, params)
	if err != nil {
		return MessageRef{}, &Error{Code: classify(err), Op: op, Err: err}
	}
	return refOf(msg), nil
}

func (t *Telegram) EditMessage(ctx context.Context, chatID int64, messageID string, text string, format Format) error {
	id, err := strconv.Atoi(messageID)
	if err != nil {
		return &Error{Code: CodeOther, Op: "EditMessage", Err: err}
	}
	params := &telego.EditMessageTextParams{
		ChatID:    tu.ID(chatID),
		MessageID: id,
		Text:      text,
		ParseMode: parseMode(format),
	}
	if _, err := t.bot.EditMessageText(ctx, params); err != nil {
		return &Error{Code: classify(err), Op: "EditMessage", Err: err}
	}
	return nil
}

func (t *Telegram) SendMenu(ctx context.Context, userID int64, text string, format Format, rows [][]Button) (MessageRef, error) {
	params := tu.Message(tu.ID(userID), text).WithReplyMarkup(keyboard(rows))
	if mode := parseMode(format); mode != "" {
		params = params.WithParseMode(mode)
	}
	msg, err := t.bot.SendMessage(ctx, params)
	if err != nil {
		return MessageRef{}, &Error{Code: classify(err), Op: "SendMenu", Err: err}
	}
	return refOf(msg), nil
}

func (t *Telegram) EditMenu(ctx context.Context, chatID int64, messageID string, text string, format Format, rows [][]Button) error {
	id, err := strconv.Atoi(messageID)
	if err != nil {
		return &Error{Code: CodeOther, Op: "EditMenu", Err: err}
	}
	params := &telego.EditMessageTextParams{
		ChatID:      tu.ID(chatID),
		MessageID:   id,
		Text:        text,
		ParseMode:   parseMode(format),
		ReplyMarkup: keyboard(rows),
	}
	if _, err := t.bot.EditMessageText(ctx, params); err != nil {
		return &Error{Code: classify(err), Op: "EditMenu", Err: err}
	}
	return nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	err := t.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		return &Error{Code: classify(err), Op: "AnswerCallback", Err: err}
	}
	return nil
}

func (t *Telegram) SendFile(ctx context.Context, chatID int64, path string, caption string) (MessageRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return MessageRef{}, &Error{Code: CodeOther, Op: "SendFile", Err: err}
	}
	defer f.Close()

	params := tu.Document(tu.ID(chatID), tu.File(f)).WithCaption(caption)
	msg, err := t.bot.SendDocument(ctx, params)
	if err != nil {
		return MessageRef{}, &Error{Code: classify(err), Op: "SendFile", Err: err}
	}
	return refOf(msg), nil
}

func refOf(msg *telego.Message) MessageRef {
	if msg == nil {
		return MessageRef{}
	}
	return MessageRef{
		ID:     strconv.Itoa(msg.MessageID),
		ChatID: msg.Chat.ID,
	}
}

func keyboard(rows [][]Button) *telego.InlineKeyboardMarkup {
	keyboardRows := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tu.InlineKeyboardButton(b.Text).WithCallbackData(b.Data))
		}
		keyboardRows = append(keyboardRows, buttons)
	}
	return &telego.InlineKeyboardMarkup{InlineKeyboard: keyboardRows}
}

func parseMode(format Format) string {
	switch format {
	case FormatMarkdown:
		return telego.ModeMarkdown
	case FormatHTML:
		return telego.ModeHTML
	default:
		return ""
	}
}

// classify maps raw API failures onto the structured codes of the contract.
// This is the single place that inspects transport error text.
func classify(err error) Code {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "user not found"),
		strings.Contains(s, "user_id_invalid"):
		return CodeUserNotFound
	case strings.Contains(s, "chat not found"),
		strings.Contains(s, "dialog not found"),
		strings.Contains(s, "bot was blocked"),
		strings.Contains(s, "user is deactivated"),
		strings.Contains(s, "can't initiate conversation"):
		return CodeChatNotFound
	default:
		return CodeOther
	}
}
