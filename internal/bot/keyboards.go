package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data values. The yn: prefix drives the yes/no flow, the
// personal-area- prefix the profile panel.
const (
	callbackYesNoStart  = "tarot:yesno"
	callbackYesNoReveal = "yn:reveal"
	callbackYesNoCancel = "yn:cancel"
	callbackYesNoBack   = "yn:back"

	callbackNatalChart = "natal_chart"

	callbackPersonalOpen     = "personal-area-open"
	callbackPersonalBack     = "personal-area-back"
	callbackPersonalClose    = "personal-area-close"
	callbackPersonalEditName = "personal-area-edit-name"
	callbackPersonalEditAge  = "personal-area-edit-age"
)

const supportButtonText = "✉️ Написать в поддержку"

func (b *Bot) mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Да / Нет", callbackYesNoStart),
			tgbotapi.NewInlineKeyboardButtonData("🪐 Натальная карта", callbackNatalChart),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(supportButtonText, b.supportChatURL),
		),
	)
}

func (b *Bot) tarotMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Да / Нет", callbackYesNoStart),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(supportButtonText, b.supportChatURL),
		),
	)
}

func (b *Bot) supportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(supportButtonText, b.supportChatURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧑‍💼 Личный кабинет", callbackPersonalOpen),
		),
	)
}

func yesNoCancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", callbackYesNoCancel),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад к Таро", callbackYesNoBack),
		),
	)
}

func yesNoRevealKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🪄 Раскрыть карту", callbackYesNoReveal),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", callbackYesNoCancel),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад к Таро", callbackYesNoBack),
		),
	)
}

func yesNoAfterKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Ещё вопрос", callbackYesNoStart),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад к Таро", callbackYesNoBack),
		),
	)
}

func (b *Bot) personalAreaKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackPersonalBack),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("👤 Начать общение", b.supportChatURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить имя", callbackPersonalEditName),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎂 Изменить возраст", callbackPersonalEditAge),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🗓 Записаться на консультацию", b.consultationURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Закрыть", callbackPersonalClose),
		),
	)
}
