package bot

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tarotbot/internal/models"
	"tarotbot/internal/tarot"
)

const maxQuestionLength = 300

// handleYesNoStart begins the yes/no draw flow for the conversation.
func (b *Bot) handleYesNoStart(chatID, userID int64) {
	session := b.sessions.GetOrCreate(chatID, userID)
	session.State = stateWaitingQuestion
	session.Question = ""
	session.CardID = 0
	session.Day = ""
	// A pending profile edit would otherwise swallow the question text
	session.AwaitingField = ""

	text := "⚖️ Расклад «Да / Нет»\n\n" +
		"Сформулируй вопрос, на который можно ответить «да» или «нет», и отправь его одним сообщением.\n\n" +
		"Например: «Стоит ли мне сегодня начинать новое дело?»"
	b.sendTextWithKeyboard(chatID, text, yesNoCancelKeyboard())
}

// handleYesNoQuestion accepts the question text and draws the card for the
// day. The card stays face down until the user asks to reveal it.
func (b *Bot) handleYesNoQuestion(chatID, userID int64, text string) {
	session := b.sessions.GetOrCreate(chatID, userID)

	question := strings.TrimSpace(text)
	if question == "" {
		b.sendTextWithKeyboard(chatID, "Вопрос не должен быть пустым. Попробуй сформулировать его ещё раз.", yesNoCancelKeyboard())
		return
	}
	if utf8.RuneCountInString(question) > maxQuestionLength {
		b.sendTextWithKeyboard(chatID, fmt.Sprintf("Вопрос слишком длинный (не больше %d символов). Сократи его и отправь снова.", maxQuestionLength), yesNoCancelKeyboard())
		return
	}

	day := b.now()
	cardID := tarot.SelectCard(userID, question, day)

	session.State = stateWaitingReveal
	session.Question = question
	session.CardID = cardID
	session.Day = day.Format("2006-01-02")

	b.logger.Info("Card selected",
		zap.Int64("user_id", userID),
		zap.String("day", session.Day),
		zap.Int("card_id", cardID))

	b.sendShuffleSequence(chatID)

	if path, ok := b.cardBackImage(); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		photo.Caption = "Карта выбрана и лежит рубашкой вверх. Раскрыть её?"
		photo.ReplyMarkup = yesNoRevealKeyboard()
		b.send(photo)
		return
	}
	b.sendTextWithKeyboard(chatID, "🂠 Карта выбрана и лежит рубашкой вверх. Раскрыть её?", yesNoRevealKeyboard())
}

// sendShuffleSequence plays the short shuffle animation before the draw.
func (b *Bot) sendShuffleSequence(chatID int64) {
	steps := []string{
		"🔮 Тасую колоду...",
		"✨ Колода слушает твой вопрос...",
	}
	for _, step := range steps {
		b.sendText(chatID, step)
		if b.shuffleDelay > 0 {
			time.Sleep(b.shuffleDelay)
		}
	}
}

// handleYesNoReveal flips the drawn card, sends the verdict and records the
// draw in history.
func (b *Bot) handleYesNoReveal(chatID, userID int64) {
	session, ok := b.sessions.Get(chatID, userID)
	if !ok || session.State != stateWaitingReveal {
		b.sendTextWithKeyboard(chatID, "Сначала задай вопрос для расклада.", b.tarotMenuKeyboard())
		return
	}

	card := tarot.CardByID(session.CardID)
	verdict := tarot.Classify(card.ID, card.Suit)

	text := buildRevealText(card, verdict, session.Question)
	if path, ok := b.cardFaceImage(card.ID); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		photo.Caption = text
		photo.ReplyMarkup = yesNoAfterKeyboard()
		b.send(photo)
	} else {
		b.sendTextWithKeyboard(chatID, text, yesNoAfterKeyboard())
	}

	b.recordDraw(session, chatID, userID, card, verdict)

	session.State = stateIdle
	session.Question = ""
	session.Day = ""
}

func (b *Bot) recordDraw(session *Session, chatID, userID int64, card tarot.Card, verdict tarot.Verdict) {
	if b.history == nil {
		return
	}
	draw := models.Draw{
		CreatedAt: b.now(),
		Day:       session.Day,
		UserID:    userID,
		ChatID:    chatID,
		Question:  session.Question,
		CardID:    card.ID,
		Verdict:   string(verdict),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.history.RecordDraw(ctx, draw); err != nil {
		b.logger.Error("Failed to record draw", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// buildRevealText renders the face-up card message with the verdict and a
// short interpretation.
func buildRevealText(card tarot.Card, verdict tarot.Verdict, question string) string {
	var sb strings.Builder
	sb.WriteString("🃏 " + card.Name + "\n\n")
	if question != "" {
		sb.WriteString("Вопрос: " + question + "\n\n")
	}
	sb.WriteString("Ответ: " + verdict.Label() + "\n\n")
	sb.WriteString(verdictMeaning(verdict))
	if card.Keywords != "" {
		sb.WriteString("\n\nКлючевые слова: " + card.Keywords)
	}
	return sb.String()
}

func verdictMeaning(verdict tarot.Verdict) string {
	switch verdict {
	case tarot.VerdictYes:
		return "Карта склоняется к положительному ответу. Обстоятельства на твоей стороне."
	case tarot.VerdictNo:
		return "Карта предостерегает: сейчас не лучший момент. Возможно, стоит подождать или изменить план."
	default:
		return "Карта не даёт однозначного ответа. Реши сердцем — ты знаешь больше, чем кажется."
	}
}

// handleYesNoCancel aborts the in-flight draw and returns to the main menu.
func (b *Bot) handleYesNoCancel(chatID, userID int64) {
	if session, ok := b.sessions.Get(chatID, userID); ok {
		session.State = stateIdle
		session.Question = ""
		session.Day = ""
	}
	b.sendTextWithKeyboard(chatID, "Расклад отменён.", b.mainMenuKeyboard())
}

// handleYesNoBack aborts the in-flight draw and shows the tarot menu.
func (b *Bot) handleYesNoBack(chatID, userID int64) {
	if session, ok := b.sessions.Get(chatID, userID); ok {
		session.State = stateIdle
		session.Question = ""
		session.Day = ""
	}
	b.sendTextWithKeyboard(chatID, "🔮 Таро-расклады", b.tarotMenuKeyboard())
}
