package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tarotbot/internal/astro"
	"tarotbot/internal/storage"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	users        storage.UserStore
	history      storage.HistoryStore
	charts       *astro.Client
	allowedUsers map[int64]bool // empty map means everyone is allowed
	sessions     *Sessions
	logger       *zap.Logger

	supportChatURL  string
	consultationURL string
	imagesDir       string

	// now supplies the calendar day for card selection; injectable so tests
	// can fix it.
	now func() time.Time

	// shuffleDelay paces the "shuffling" messages before a draw.
	shuffleDelay time.Duration
}

// Options carries the non-store settings for NewBot.
type Options struct {
	AllowedUserIDs  []int64
	SupportChatURL  string
	ConsultationURL string
	ImagesDir       string
}
