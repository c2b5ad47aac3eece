package stubs

import (
	"context"
	"testing"
	"time"

	"tarotbot/internal/models"
)

func TestMockUserDB_ProfileLifecycle(t *testing.T) {
	db := NewMockUserDB()
	ctx := context.Background()

	if err := db.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}

	// First access creates an empty profile with defaults
	user, err := db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", user.UserID)
	}
	if user.FreeTokensLimit != 50000 {
		t.Errorf("Expected default free token limit 50000, got %d", user.FreeTokensLimit)
	}
	if user.Name != "" || user.Age != 0 {
		t.Error("Expected empty profile on first access")
	}

	if err := db.SetName(ctx, 42, "Мария"); err != nil {
		t.Fatalf("Failed to set name: %v", err)
	}
	if err := db.SetAge(ctx, 42, 33); err != nil {
		t.Fatalf("Failed to set age: %v", err)
	}

	user, err = db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.Name != "Мария" {
		t.Errorf("Expected name 'Мария', got %q", user.Name)
	}
	if user.Age != 33 {
		t.Errorf("Expected age 33, got %d", user.Age)
	}
}

func TestMockUserDB_BirthData(t *testing.T) {
	db := NewMockUserDB()
	ctx := context.Background()

	data := models.BirthData{Date: "1990-01-02", Time: "12:45", Lat: 48.85, Lon: 2.35}
	if err := db.SetBirthData(ctx, 7, data); err != nil {
		t.Fatalf("Failed to set birth data: %v", err)
	}

	user, err := db.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if !user.HasCoords {
		t.Error("Expected coordinates to be set")
	}
	if user.BirthDate != "1990-01-02" || user.BirthTime != "12:45" {
		t.Errorf("Unexpected birth data: %q %q", user.BirthDate, user.BirthTime)
	}
	if user.HasTzOffset {
		t.Error("Expected tz offset to stay unset")
	}

	if err := db.SetTzOffsetMinutes(ctx, 7, 120); err != nil {
		t.Fatalf("Failed to set tz offset: %v", err)
	}
	user, _ = db.GetUser(ctx, 7)
	if !user.HasTzOffset || user.TzOffsetMinutes != 120 {
		t.Errorf("Expected tz offset 120, got %d (set=%v)", user.TzOffsetMinutes, user.HasTzOffset)
	}
}

func TestMockHistoryDB_LastDraws(t *testing.T) {
	db := NewMockHistoryDB()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		draw := models.Draw{
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Day:       "2024-03-01",
			UserID:    1,
			ChatID:    1,
			Question:  "вопрос",
			CardID:    i,
			Verdict:   "yes",
		}
		if err := db.RecordDraw(ctx, draw); err != nil {
			t.Fatalf("Failed to record draw: %v", err)
		}
	}

	// Another user
	other := models.Draw{CreatedAt: base, UserID: 2, CardID: 10, Verdict: "no"}
	if err := db.RecordDraw(ctx, other); err != nil {
		t.Fatalf("Failed to record draw: %v", err)
	}

	draws, err := db.GetLastDraws(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Failed to get draws: %v", err)
	}
	if len(draws) != 3 {
		t.Fatalf("Expected 3 draws, got %d", len(draws))
	}

	// Newest first
	if draws[0].CardID != 4 {
		t.Errorf("Expected newest draw first (card 4), got card %d", draws[0].CardID)
	}
	for i := 0; i < len(draws)-1; i++ {
		if draws[i].CreatedAt.Before(draws[i+1].CreatedAt) {
			t.Error("Expected draws sorted newest first")
		}
	}
}

func TestMockHistoryDB_VerdictStats(t *testing.T) {
	db := NewMockHistoryDB()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	verdicts := []string{"yes", "yes", "no", "intuition", "intuition", "intuition"}
	for i, v := range verdicts {
		draw := models.Draw{CreatedAt: base.Add(time.Duration(i) * time.Minute), UserID: 1, Verdict: v}
		if err := db.RecordDraw(ctx, draw); err != nil {
			t.Fatalf("Failed to record draw: %v", err)
		}
	}

	// Old draw outside the window
	old := models.Draw{CreatedAt: base.AddDate(0, -1, 0), UserID: 1, Verdict: "yes"}
	if err := db.RecordDraw(ctx, old); err != nil {
		t.Fatalf("Failed to record draw: %v", err)
	}

	stats, err := db.GetVerdictStats(ctx, 1, base)
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("Expected 3 verdicts, got %d", len(stats))
	}
	if stats[0].Verdict != "intuition" || stats[0].Count != 3 {
		t.Errorf("Expected intuition x3 first, got %s x%d", stats[0].Verdict, stats[0].Count)
	}
	if stats[1].Verdict != "yes" || stats[1].Count != 2 {
		t.Errorf("Expected yes x2 second, got %s x%d", stats[1].Verdict, stats[1].Count)
	}
	if stats[2].Verdict != "no" || stats[2].Count != 1 {
		t.Errorf("Expected no x1 last, got %s x%d", stats[2].Verdict, stats[2].Count)
	}
}
