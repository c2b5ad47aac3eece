package bot

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// send pushes an arbitrary chattable through the API. The nil guard lets the
// flow handlers run in tests without a live Telegram connection.
func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.api == nil {
		return tgbotapi.Message{}, nil
	}
	msg, err := b.api.Send(c)
	if err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
	return msg, err
}

// sendText sends a plain text message to the chat.
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.send(msg)
}

// sendTextWithKeyboard sends a text message with an inline keyboard attached.
func (b *Bot) sendTextWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return b.send(msg)
}

// answerCallback acknowledges a callback query so the client stops showing the
// loading spinner.
func (b *Bot) answerCallback(callbackID string) {
	if b.api == nil {
		return
	}
	callback := tgbotapi.NewCallback(callbackID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Warn("Failed to answer callback query", zap.Error(err))
	}
}

// cardBackImage returns the path to the deck back image, if the asset exists.
func (b *Bot) cardBackImage() (string, bool) {
	return b.imageFile("back.png")
}

// cardFaceImage returns the path to the face image for a card id, if the
// asset exists.
func (b *Bot) cardFaceImage(cardID int) (string, bool) {
	return b.imageFile(filepath.Join("faces", strconv.Itoa(cardID)+".png"))
}

func (b *Bot) imageFile(name string) (string, bool) {
	if b.imagesDir == "" {
		return "", false
	}
	path := filepath.Join(b.imagesDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// formatNumber renders an integer with thin-space thousand separators,
// e.g. 50000 -> "50 000".
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, " ")
	if neg {
		out = "-" + out
	}
	return out
}

// encodeReferralCode turns a user id into the base36 code embedded in the
// referral deep link.
func encodeReferralCode(userID int64) string {
	return strconv.FormatInt(userID, 36)
}
