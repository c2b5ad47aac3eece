package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tarotbot/internal/astro"
)

// handleNatalChart builds and sends the user's natal chart. Requires birth
// data in the profile; prompts for it otherwise.
func (b *Bot) handleNatalChart(chatID, userID int64) {
	if b.charts == nil {
		b.sendTextWithKeyboard(chatID, "🪐 Натальные карты временно недоступны.", b.mainMenuKeyboard())
		return
	}

	user, err := b.getUser(userID)
	if err != nil {
		b.logger.Error("Failed to load user profile", zap.Int64("user_id", userID), zap.Error(err))
		b.sendText(chatID, "Не удалось загрузить профиль. Попробуй позже.")
		return
	}

	if user.BirthDate == "" || user.BirthTime == "" || !user.HasCoords {
		b.sendTextWithKeyboard(chatID,
			"🪐 Для натальной карты нужны данные рождения: дата, время и место.\n\n"+
				"Напиши в поддержку, и мы поможем их добавить.",
			b.supportKeyboard())
		return
	}

	tzMinutes := user.TzOffsetMinutes
	if !user.HasTzOffset {
		tzMinutes = astro.ApproxTzOffsetMinutes(user.Lon)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := b.users.SetTzOffsetMinutes(ctx, userID, tzMinutes); err != nil {
			b.logger.Warn("Failed to persist tz offset", zap.Int64("user_id", userID), zap.Error(err))
		}
		cancel()
	}

	dob, err := astro.ISODateToDDMMYYYY(user.BirthDate)
	if err != nil {
		b.logger.Error("Invalid birth date in profile", zap.Int64("user_id", userID), zap.String("birth_date", user.BirthDate), zap.Error(err))
		b.sendText(chatID, "В профиле указана некорректная дата рождения. Напиши в поддержку, чтобы её исправить.")
		return
	}

	b.sendText(chatID, "🪐 Строю натальную карту...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svg, err := b.charts.GetChartSVG(ctx, astro.ChartRequest{
		DOB: dob,
		TOB: user.BirthTime,
		Lat: user.Lat,
		Lon: user.Lon,
		Tz:  astro.TzMinutesToDecimalHours(tzMinutes),
	})
	if err != nil {
		b.logger.Error("Failed to fetch natal chart", zap.Int64("user_id", userID), zap.Error(err))
		b.sendTextWithKeyboard(chatID, "Не удалось построить натальную карту. Попробуй позже.", b.mainMenuKeyboard())
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "natal-chart.svg",
		Bytes: []byte(svg),
	})
	doc.Caption = "🪐 Твоя натальная карта"
	b.send(doc)
	b.sendMainMenu(chatID)
}
