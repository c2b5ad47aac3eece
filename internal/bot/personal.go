package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tarotbot/internal/models"
)

const (
	awaitingName = "name"
	awaitingAge  = "age"

	maxNameLength = 64
)

// handlePersonalOpen shows the personal area panel.
func (b *Bot) handlePersonalOpen(chatID, userID int64) {
	user, err := b.getUser(userID)
	if err != nil {
		b.logger.Error("Failed to load user profile", zap.Int64("user_id", userID), zap.Error(err))
		b.sendText(chatID, "Не удалось открыть личный кабинет. Попробуй позже.")
		return
	}

	session := b.sessions.GetOrCreate(chatID, userID)
	text := b.personalAreaText(user)
	msg, err := b.sendTextWithKeyboard(chatID, text, b.personalAreaKeyboard())
	if err == nil {
		session.PanelChatID = chatID
		session.PanelMessageID = msg.MessageID
	}
}

// refreshPersonalPanel re-renders the panel message in place after a profile
// edit. Falls back to a fresh message when no panel is tracked.
func (b *Bot) refreshPersonalPanel(chatID, userID int64) {
	user, err := b.getUser(userID)
	if err != nil {
		b.logger.Error("Failed to load user profile", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	session := b.sessions.GetOrCreate(chatID, userID)
	if session.PanelMessageID == 0 || b.api == nil {
		b.handlePersonalOpen(chatID, userID)
		return
	}

	edit := tgbotapi.NewEditMessageText(session.PanelChatID, session.PanelMessageID, b.personalAreaText(user))
	keyboard := b.personalAreaKeyboard()
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("Failed to refresh personal area panel", zap.Error(err))
	}
}

// handlePersonalClose removes the panel message.
func (b *Bot) handlePersonalClose(chatID, userID int64) {
	session := b.sessions.GetOrCreate(chatID, userID)
	if session.PanelMessageID != 0 && b.api != nil {
		del := tgbotapi.NewDeleteMessage(session.PanelChatID, session.PanelMessageID)
		if _, err := b.api.Request(del); err != nil {
			b.logger.Warn("Failed to delete personal area panel", zap.Error(err))
		}
	}
	session.PanelChatID = 0
	session.PanelMessageID = 0
	session.AwaitingField = ""
}

// handlePersonalBack closes the panel and returns to the main menu.
func (b *Bot) handlePersonalBack(chatID, userID int64) {
	b.handlePersonalClose(chatID, userID)
	b.sendMainMenu(chatID)
}

// handlePersonalEditName asks the user for a new display name.
func (b *Bot) handlePersonalEditName(chatID, userID int64) {
	session := b.sessions.GetOrCreate(chatID, userID)
	b.dropYesNoFlow(session)
	session.AwaitingField = awaitingName
	b.sendText(chatID, "Отправь новое имя одним сообщением.")
}

// handlePersonalEditAge asks the user for a new age.
func (b *Bot) handlePersonalEditAge(chatID, userID int64) {
	session := b.sessions.GetOrCreate(chatID, userID)
	b.dropYesNoFlow(session)
	session.AwaitingField = awaitingAge
	b.sendText(chatID, "Отправь свой возраст числом, например: 27")
}

// dropYesNoFlow abandons an in-flight draw so the next text message goes to
// the profile edit, not the oracle.
func (b *Bot) dropYesNoFlow(session *Session) {
	session.State = stateIdle
	session.Question = ""
	session.Day = ""
}

// handlePersonalInput consumes a text message while a profile field edit is
// pending. Returns false when no edit is in flight.
func (b *Bot) handlePersonalInput(chatID, userID int64, text string) bool {
	session, ok := b.sessions.Get(chatID, userID)
	if !ok || session.AwaitingField == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch session.AwaitingField {
	case awaitingName:
		name := strings.TrimSpace(text)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			b.sendText(chatID, fmt.Sprintf("Имя должно быть непустым и не длиннее %d символов. Попробуй ещё раз.", maxNameLength))
			return true
		}
		if err := b.users.SetName(ctx, userID, name); err != nil {
			b.logger.Error("Failed to set name", zap.Int64("user_id", userID), zap.Error(err))
			b.sendText(chatID, "Не удалось сохранить имя. Попробуй позже.")
			return true
		}
		session.AwaitingField = ""
		b.sendText(chatID, "Имя обновлено ✅")
		b.refreshPersonalPanel(chatID, userID)
		return true

	case awaitingAge:
		age, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || age < 1 || age > 120 {
			b.sendText(chatID, "Возраст должен быть числом от 1 до 120. Попробуй ещё раз.")
			return true
		}
		if err := b.users.SetAge(ctx, userID, age); err != nil {
			b.logger.Error("Failed to set age", zap.Int64("user_id", userID), zap.Error(err))
			b.sendText(chatID, "Не удалось сохранить возраст. Попробуй позже.")
			return true
		}
		session.AwaitingField = ""
		b.sendText(chatID, "Возраст обновлён ✅")
		b.refreshPersonalPanel(chatID, userID)
		return true
	}

	session.AwaitingField = ""
	return false
}

// personalAreaText renders the profile panel body.
func (b *Bot) personalAreaText(user models.User) string {
	name := user.Name
	if name == "" {
		name = "не указано"
	}
	gender := user.Gender
	if gender == "" {
		gender = "не указан"
	}
	age := "не указан"
	if user.Age > 0 {
		age = strconv.Itoa(user.Age)
	}
	subscription := "нет"
	if user.Subscription > 0 {
		subscription = fmt.Sprintf("уровень %d", user.Subscription)
	}

	var sb strings.Builder
	sb.WriteString("🧑‍💼 Личный кабинет\n\n")
	sb.WriteString(fmt.Sprintf("ID: %d\n", user.UserID))
	sb.WriteString("Имя: " + name + "\n")
	sb.WriteString("Пол: " + gender + "\n")
	sb.WriteString("Возраст: " + age + "\n\n")
	sb.WriteString(fmt.Sprintf("Бесплатные токены: %s из %s\n", formatNumber(user.FreeTokens), formatNumber(user.FreeTokensLimit)))
	sb.WriteString("Платные токены: " + formatNumber(user.PaidTokens) + "\n")
	sb.WriteString("Подписка: " + subscription + "\n\n")
	sb.WriteString("Реферальная ссылка:\n" + b.referralLink(user.UserID))
	return sb.String()
}

// referralLink builds the deep link a user can share to invite others.
func (b *Bot) referralLink(userID int64) string {
	username := "tarotbot"
	if b.api != nil && b.api.Self.UserName != "" {
		username = b.api.Self.UserName
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", username, encodeReferralCode(userID))
}

func (b *Bot) getUser(userID int64) (models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.users.GetUser(ctx, userID)
}
