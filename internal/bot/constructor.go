package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tarotbot/internal/astro"
	"tarotbot/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, users storage.UserStore, history storage.HistoryStore, charts *astro.Client, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	allowedUsers := make(map[int64]bool)
	for _, id := range opts.AllowedUserIDs {
		allowedUsers[id] = true
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:             api,
		users:           users,
		history:         history,
		charts:          charts,
		allowedUsers:    allowedUsers,
		sessions:        NewSessions(),
		logger:          logger,
		supportChatURL:  opts.SupportChatURL,
		consultationURL: opts.ConsultationURL,
		imagesDir:       opts.ImagesDir,
		now:             time.Now,
		shuffleDelay:    2 * time.Second,
	}, nil
}

// GetAPI returns the bot API for testing
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}
