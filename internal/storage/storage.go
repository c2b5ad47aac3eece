package storage

import (
	"context"
	"time"

	"tarotbot/internal/models"
)

// UserStore persists user profiles (personal area and birth data).
type UserStore interface {
	// GetUser returns the profile for the given user, creating an empty row
	// on first access.
	GetUser(ctx context.Context, userID int64) (models.User, error)

	SetName(ctx context.Context, userID int64, name string) error
	SetAge(ctx context.Context, userID int64, age int) error
	SetGender(ctx context.Context, userID int64, gender string) error
	SetBirthData(ctx context.Context, userID int64, data models.BirthData) error
	SetTzOffsetMinutes(ctx context.Context, userID int64, minutes int) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}

// HistoryStore records revealed yes/no draws and answers statistics queries.
type HistoryStore interface {
	RecordDraw(ctx context.Context, draw models.Draw) error

	// GetLastDraws returns the most recent draws for the user, newest first.
	GetLastDraws(ctx context.Context, userID int64, limit int) ([]models.Draw, error)

	// GetVerdictStats returns per-verdict draw counts for the user since the
	// given time, ordered by count descending.
	GetVerdictStats(ctx context.Context, userID int64, since time.Time) ([]models.VerdictStat, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
