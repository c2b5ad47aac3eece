package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleUpdate routes a single update. Panics in handlers are recovered so a
// bad update cannot take the bot down.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in update handler",
				zap.Any("panic", r),
				zap.Int("update_id", update.UpdateID))
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	chatID := message.Chat.ID
	userID := message.From.ID

	if !b.isAllowed(userID) {
		b.sendText(chatID, "Извини, этот бот доступен только по приглашению.")
		return
	}

	if message.IsCommand() {
		// A command always interrupts the current conversation.
		if session, ok := b.sessions.Get(chatID, userID); ok {
			session.State = stateIdle
			session.Question = ""
			session.Day = ""
			session.AwaitingField = ""
		}
		b.handleCommand(chatID, userID, message.Command())
		return
	}

	text := message.Text
	if text == "" {
		return
	}

	if b.handlePersonalInput(chatID, userID, text) {
		return
	}

	if session, ok := b.sessions.Get(chatID, userID); ok && session.State == stateWaitingQuestion {
		b.handleYesNoQuestion(chatID, userID, text)
		return
	}

	// Free text outside any flow: nudge to the menu.
	b.sendTextWithKeyboard(chatID, "Выбери действие на клавиатуре или начни с /start.", b.mainMenuKeyboard())
}

func (b *Bot) handleCommand(chatID, userID int64, command string) {
	switch command {
	case "start":
		b.handleStart(chatID, userID)
	case "help":
		b.handleHelp(chatID)
	case "history":
		b.handleHistory(chatID, userID)
	case "stats":
		b.handleStats(chatID, userID)
	case "support":
		b.handleSupport(chatID)
	case "cab":
		b.handlePersonalOpen(chatID, userID)
	default:
		b.sendText(chatID, "Не знаю такую команду. Попробуй /help.")
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	if !b.isAllowed(userID) {
		b.answerCallback(query.ID)
		return
	}

	b.answerCallback(query.ID)

	switch query.Data {
	case callbackYesNoStart:
		b.handleYesNoStart(chatID, userID)
	case callbackYesNoReveal:
		b.handleYesNoReveal(chatID, userID)
	case callbackYesNoCancel:
		b.handleYesNoCancel(chatID, userID)
	case callbackYesNoBack:
		b.handleYesNoBack(chatID, userID)
	case callbackNatalChart:
		b.handleNatalChart(chatID, userID)
	case callbackPersonalOpen:
		b.handlePersonalOpen(chatID, userID)
	case callbackPersonalBack:
		b.handlePersonalBack(chatID, userID)
	case callbackPersonalClose:
		b.handlePersonalClose(chatID, userID)
	case callbackPersonalEditName:
		b.handlePersonalEditName(chatID, userID)
	case callbackPersonalEditAge:
		b.handlePersonalEditAge(chatID, userID)
	default:
		b.logger.Warn("Unknown callback data", zap.String("data", query.Data))
	}
}

// isAllowed reports whether the user may talk to the bot. An empty allowlist
// keeps the bot public.
func (b *Bot) isAllowed(userID int64) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}
	return b.allowedUsers[userID]
}
