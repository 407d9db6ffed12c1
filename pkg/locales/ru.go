package locales

// Constants for operator- and admin-facing formatted texts (in Russian).
// User-facing dialog texts live in the i18n bundle; these are templates
// rendered with fmt.Sprintf by the relay and broadcast code.
const (
	// Forwarded question in the support chat:
	// clickable user mention, user id, question text, reply counter.
	MsgForwardedQuestion = "📨 [%s](tg://user?id=%d) (ID: %d)\n_Вопрос пользователя:_\n\n*%s*\n\n💬 Ответов: %d"

	// Operator reply as delivered to the user.
	MsgOperatorReply = "💬 %s"

	// Broadcast progress notification: percent, processed, total,
	// sent, not-activated, not-found.
	MsgBroadcastProgress = "📊 Прогресс: %d%% (%d/%d)\n✅ Доставлено: %d\n⚠️ Не активировали бота: %d\n❌ Не найдены: %d"

	// Broadcast final report pieces.
	MsgBroadcastDoneHeader   = "✅ Рассылка завершена за %dм %dс!\n📊 Доставлено: %d/%d"
	MsgBroadcastNotActivated = "⚠️ Не активировали бота (%d): %s"
	MsgBroadcastNotFound     = "❌ Не найдены (%d): %s"
	MsgBroadcastFailed       = "❌ Рассылка прервана внутренней ошибкой. Часть сообщений могла быть отправлена."

	// Export result sent to the support chat.
	MsgExportCaption = "📊 Выгрузка пользователей и сообщений"
)
