package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tarotbot/internal/storage/stubs"
	"tarotbot/internal/tarot"
)

// Note: We can't easily mock tgbotapi.BotAPI, so tests focus on internal logic
// without actually sending messages to Telegram

func newTestBot(t *testing.T) *Bot {
	t.Helper()

	users := stubs.NewMockUserDB()
	history := stubs.NewMockHistoryDB()
	ctx := context.Background()
	if err := users.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize user store: %v", err)
	}
	if err := history.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize history store: %v", err)
	}

	return &Bot{
		api:      nil, // Not needed for internal logic tests
		users:    users,
		history:  history,
		sessions: NewSessions(),
		logger:   zap.NewNop(), // Use nop logger for tests
		now: func() time.Time {
			return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		},
		shuffleDelay: 0,
	}
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func commandMessage(userID, chatID int64, command string) *tgbotapi.Message {
	msg := textMessage(userID, chatID, command)
	msg.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(command)},
	}
	return msg
}

func TestBot_YesNoFlow(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(42)
	chatID := int64(456)

	// Step 1: open the yes/no flow
	bot.handleYesNoStart(chatID, userID)

	session, ok := bot.sessions.Get(chatID, userID)
	if !ok {
		t.Fatal("Expected session to be created")
	}
	if session.State != stateWaitingQuestion {
		t.Errorf("Expected stateWaitingQuestion, got %d", session.State)
	}

	// Step 2: send the question; the card is drawn face down
	question := "Will I succeed today?"
	bot.handleMessage(textMessage(userID, chatID, question))

	if session.State != stateWaitingReveal {
		t.Fatalf("Expected stateWaitingReveal, got %d", session.State)
	}
	if session.Question != question {
		t.Errorf("Expected question %q, got %q", question, session.Question)
	}
	wantCard := tarot.SelectCard(userID, question, bot.now())
	if session.CardID != wantCard {
		t.Errorf("Expected card %d, got %d", wantCard, session.CardID)
	}
	if session.Day != "2024-01-01" {
		t.Errorf("Expected day 2024-01-01, got %q", session.Day)
	}

	// Step 3: reveal; the draw is recorded and the flow ends
	bot.handleYesNoReveal(chatID, userID)

	if session.State != stateIdle {
		t.Errorf("Expected stateIdle after reveal, got %d", session.State)
	}

	draws, err := bot.history.GetLastDraws(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Failed to load draws: %v", err)
	}
	if len(draws) != 1 {
		t.Fatalf("Expected 1 recorded draw, got %d", len(draws))
	}
	if draws[0].CardID != wantCard {
		t.Errorf("Expected recorded card %d, got %d", wantCard, draws[0].CardID)
	}
	if draws[0].Question != question {
		t.Errorf("Expected recorded question %q, got %q", question, draws[0].Question)
	}
	card := tarot.CardByID(wantCard)
	if draws[0].Verdict != string(tarot.Classify(card.ID, card.Suit)) {
		t.Errorf("Expected recorded verdict %q, got %q", tarot.Classify(card.ID, card.Suit), draws[0].Verdict)
	}
}

func TestBot_YesNoSameQuestionSameCard(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(7)
	chatID := int64(456)

	bot.handleYesNoStart(chatID, userID)
	bot.handleYesNoQuestion(chatID, userID, "Should I move?")
	session, _ := bot.sessions.Get(chatID, userID)
	first := session.CardID

	// Cancel and ask the same question again on the same day
	bot.handleYesNoCancel(chatID, userID)
	bot.handleYesNoStart(chatID, userID)
	bot.handleYesNoQuestion(chatID, userID, "  should   I  MOVE? ")

	if session.CardID != first {
		t.Errorf("Expected same card for same normalized question and day, got %d and %d", first, session.CardID)
	}
}

func TestBot_YesNoRejectsInvalidQuestions(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(123)
	chatID := int64(456)

	bot.handleYesNoStart(chatID, userID)
	session, _ := bot.sessions.Get(chatID, userID)

	// Blank question keeps the flow waiting
	bot.handleYesNoQuestion(chatID, userID, "   \n\t ")
	if session.State != stateWaitingQuestion {
		t.Errorf("Expected stateWaitingQuestion after blank question, got %d", session.State)
	}

	// Over-long question keeps the flow waiting
	bot.handleYesNoQuestion(chatID, userID, strings.Repeat("а", maxQuestionLength+1))
	if session.State != stateWaitingQuestion {
		t.Errorf("Expected stateWaitingQuestion after over-long question, got %d", session.State)
	}

	// A question at the limit is accepted
	bot.handleYesNoQuestion(chatID, userID, strings.Repeat("а", maxQuestionLength))
	if session.State != stateWaitingReveal {
		t.Errorf("Expected stateWaitingReveal at length limit, got %d", session.State)
	}
}

func TestBot_RevealWithoutQuestion(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(123)
	chatID := int64(456)

	bot.handleYesNoReveal(chatID, userID)

	// No draw must be recorded
	draws, err := bot.history.GetLastDraws(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Failed to load draws: %v", err)
	}
	if len(draws) != 0 {
		t.Errorf("Expected no recorded draws, got %d", len(draws))
	}
}

func TestBot_CommandInterruptsConversation(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(123)
	chatID := int64(456)

	bot.handleYesNoStart(chatID, userID)
	session, _ := bot.sessions.Get(chatID, userID)
	if session.State != stateWaitingQuestion {
		t.Fatalf("Expected stateWaitingQuestion, got %d", session.State)
	}

	// /start drops the in-flight question
	bot.handleMessage(commandMessage(userID, chatID, "/start"))

	if session, ok := bot.sessions.Get(chatID, userID); ok && session.State != stateIdle {
		t.Errorf("Expected conversation to be reset by command, got state %d", session.State)
	}

	// An edit prompt is dropped too
	bot.handlePersonalEditName(chatID, userID)
	bot.handleMessage(commandMessage(userID, chatID, "/help"))

	session, _ = bot.sessions.Get(chatID, userID)
	if session.AwaitingField != "" {
		t.Errorf("Expected pending edit to be cleared by command, got %q", session.AwaitingField)
	}
}

func TestBot_PersonalEditName(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(123)
	chatID := int64(456)

	bot.handlePersonalEditName(chatID, userID)
	bot.handleMessage(textMessage(userID, chatID, "Анна"))

	user, err := bot.users.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if user.Name != "Анна" {
		t.Errorf("Expected name 'Анна', got %q", user.Name)
	}

	session, _ := bot.sessions.Get(chatID, userID)
	if session.AwaitingField != "" {
		t.Errorf("Expected awaiting field to be cleared, got %q", session.AwaitingField)
	}
}

func TestBot_PersonalEditAge(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(123)
	chatID := int64(456)

	bot.handlePersonalEditAge(chatID, userID)

	// Invalid input keeps the prompt open
	bot.handleMessage(textMessage(userID, chatID, "двадцать семь"))
	session, _ := bot.sessions.Get(chatID, userID)
	if session.AwaitingField != awaitingAge {
		t.Fatalf("Expected prompt to stay open after invalid age, got %q", session.AwaitingField)
	}

	bot.handleMessage(textMessage(userID, chatID, "500"))
	if session.AwaitingField != awaitingAge {
		t.Fatalf("Expected prompt to stay open after out-of-range age, got %q", session.AwaitingField)
	}

	bot.handleMessage(textMessage(userID, chatID, "27"))

	user, err := bot.users.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if user.Age != 27 {
		t.Errorf("Expected age 27, got %d", user.Age)
	}
	if session.AwaitingField != "" {
		t.Errorf("Expected awaiting field to be cleared, got %q", session.AwaitingField)
	}
}

func TestBot_YesNoStartCancelsPendingEdit(t *testing.T) {
	bot := newTestBot(t)

	userID := int64(123)
	chatID := int64(456)

	// Open a name edit prompt, then start a draw without answering it
	bot.handlePersonalEditName(chatID, userID)
	bot.handleYesNoStart(chatID, userID)

	question := "Will I succeed today?"
	bot.handleMessage(textMessage(userID, chatID, question))

	session, _ := bot.sessions.Get(chatID, userID)
	if session.State != stateWaitingReveal {
		t.Fatalf("Expected question to reach the draw flow, got state %d", session.State)
	}
	if session.Question != question {
		t.Errorf("Expected question %q, got %q", question, session.Question)
	}

	// The question must not leak into the profile
	user, err := bot.users.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if user.Name != "" {
		t.Errorf("Expected name to stay empty, got %q", user.Name)
	}

	// And the reverse: an edit prompt abandons an in-flight draw
	bot.handleYesNoStart(chatID, userID)
	bot.handlePersonalEditAge(chatID, userID)
	bot.handleMessage(textMessage(userID, chatID, "31"))

	if session.State != stateIdle {
		t.Errorf("Expected draw to be abandoned by edit prompt, got state %d", session.State)
	}
	user, _ = bot.users.GetUser(context.Background(), userID)
	if user.Age != 31 {
		t.Errorf("Expected age 31, got %d", user.Age)
	}
}

func TestBot_Allowlist(t *testing.T) {
	bot := newTestBot(t)

	// Empty allowlist keeps the bot public
	if !bot.isAllowed(999) {
		t.Error("Expected empty allowlist to permit everyone")
	}

	bot.allowedUsers = map[int64]bool{123: true}
	if !bot.isAllowed(123) {
		t.Error("Expected listed user to be allowed")
	}
	if bot.isAllowed(999) {
		t.Error("Expected unlisted user to be rejected")
	}

	// A message from a rejected user must not open a session
	bot.handleMessage(commandMessage(999, 456, "/start"))
	bot.handleMessage(textMessage(999, 456, "Should I?"))
	if _, ok := bot.sessions.Get(456, 999); ok {
		t.Error("Expected no session for rejected user")
	}
}

func TestBot_PanicRecovery(t *testing.T) {
	bot := newTestBot(t)

	// A nil Chat would panic inside handleMessage; handleUpdate must recover
	update := tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 123},
			Chat: nil,
			Text: "boom",
		},
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("handleUpdate panicked: %v", r)
		}
	}()

	bot.handleUpdate(update)
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{50000, "50 000"},
		{1234567, "1 234 567"},
		{-1000, "-1 000"},
	}
	for _, c := range cases {
		if got := formatNumber(c.in); got != c.want {
			t.Errorf("formatNumber(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEncodeReferralCode(t *testing.T) {
	if got := encodeReferralCode(35); got != "z" {
		t.Errorf("encodeReferralCode(35) = %q, want %q", got, "z")
	}
	if got := encodeReferralCode(36); got != "10" {
		t.Errorf("encodeReferralCode(36) = %q, want %q", got, "10")
	}
}
