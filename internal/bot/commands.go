package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tarotbot/internal/tarot"
)

const historyPageSize = 10

// handleStart greets the user and shows the main menu. Any in-flight
// conversation is dropped.
func (b *Bot) handleStart(chatID, userID int64) {
	b.sessions.Clear(chatID, userID)

	// Touch the profile so the row exists before the first edit.
	if _, err := b.getUser(userID); err != nil {
		b.logger.Warn("Failed to ensure user profile", zap.Int64("user_id", userID), zap.Error(err))
	}

	text := "🔮 Привет! Я таро-бот.\n\n" +
		"Задай вопрос раскладу «Да / Нет» — и карта дня ответит. " +
		"Один и тот же вопрос в течение дня всегда открывает одну и ту же карту.\n\n" +
		"Выбери, с чего начнём:"
	b.sendTextWithKeyboard(chatID, text, b.mainMenuKeyboard())
}

func (b *Bot) sendMainMenu(chatID int64) {
	b.sendTextWithKeyboard(chatID, "Выбери, с чего начнём:", b.mainMenuKeyboard())
}

// handleSupport shows the support contact.
func (b *Bot) handleSupport(chatID int64) {
	b.sendTextWithKeyboard(chatID, "✉️ Вопросы и предложения — пиши в поддержку:", b.supportKeyboard())
}

// handleHistory shows the user's most recent revealed draws.
func (b *Bot) handleHistory(chatID, userID int64) {
	if b.history == nil {
		b.sendText(chatID, "История раскладов временно недоступна.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	draws, err := b.history.GetLastDraws(ctx, userID, historyPageSize)
	if err != nil {
		b.logger.Error("Failed to load draw history", zap.Int64("user_id", userID), zap.Error(err))
		b.sendText(chatID, "Не удалось загрузить историю. Попробуй позже.")
		return
	}

	if len(draws) == 0 {
		b.sendTextWithKeyboard(chatID, "История пока пуста. Задай первый вопрос!", b.tarotMenuKeyboard())
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Последние расклады:\n")
	for _, draw := range draws {
		card := tarot.CardByID(draw.CardID)
		sb.WriteString(fmt.Sprintf("\n%s — %s\n%s → %s\n",
			draw.Day, card.Name, draw.Question, tarot.Verdict(draw.Verdict).Label()))
	}
	b.sendTextWithKeyboard(chatID, sb.String(), b.tarotMenuKeyboard())
}

// handleStats shows the user's verdict tallies for the last 30 days.
func (b *Bot) handleStats(chatID, userID int64) {
	if b.history == nil {
		b.sendText(chatID, "Статистика временно недоступна.")
		return
	}

	since := b.now().AddDate(0, 0, -30)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := b.history.GetVerdictStats(ctx, userID, since)
	if err != nil {
		b.logger.Error("Failed to load verdict stats", zap.Int64("user_id", userID), zap.Error(err))
		b.sendText(chatID, "Не удалось загрузить статистику. Попробуй позже.")
		return
	}

	if len(stats) == 0 {
		b.sendTextWithKeyboard(chatID, "За последние 30 дней раскладов не было.", b.tarotMenuKeyboard())
		return
	}

	total := 0
	for _, stat := range stats {
		total += stat.Count
	}

	var sb strings.Builder
	sb.WriteString("📊 Ответы карт за 30 дней:\n\n")
	for _, stat := range stats {
		sb.WriteString(fmt.Sprintf("%s: %d\n", tarot.Verdict(stat.Verdict).Label(), stat.Count))
	}
	sb.WriteString(fmt.Sprintf("\nВсего раскладов: %d", total))
	b.sendTextWithKeyboard(chatID, sb.String(), b.tarotMenuKeyboard())
}

// handleHelp lists the available commands.
func (b *Bot) handleHelp(chatID int64) {
	text := "Команды:\n" +
		"/start — главное меню\n" +
		"/cab — личный кабинет\n" +
		"/history — последние расклады\n" +
		"/stats — статистика ответов за 30 дней\n" +
		"/support — написать в поддержку"
	b.sendText(chatID, text)
}
