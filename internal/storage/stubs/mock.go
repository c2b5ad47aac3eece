package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"tarotbot/internal/models"
)

// MockUserDB is an in-memory implementation of the UserStore interface for
// testing and USE_MOCK_DB mode.
type MockUserDB struct {
	mu    sync.RWMutex
	users map[int64]models.User
}

// NewMockUserDB creates a new mock user store
func NewMockUserDB() *MockUserDB {
	return &MockUserDB{users: make(map[int64]models.User)}
}

// Initialize does nothing for the mock store
func (m *MockUserDB) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockUserDB) ensureUser(userID int64) models.User {
	user, ok := m.users[userID]
	if !ok {
		user = models.User{
			UserID:          userID,
			FreeTokensLimit: 50000,
		}
		m.users[userID] = user
	}
	return user
}

// GetUser returns the profile, creating an empty one on first access
func (m *MockUserDB) GetUser(ctx context.Context, userID int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureUser(userID), nil
}

// SetName updates the display name
func (m *MockUserDB) SetName(ctx context.Context, userID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.ensureUser(userID)
	user.Name = name
	m.users[userID] = user
	return nil
}

// SetAge updates the age
func (m *MockUserDB) SetAge(ctx context.Context, userID int64, age int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.ensureUser(userID)
	user.Age = age
	m.users[userID] = user
	return nil
}

// SetGender updates the gender
func (m *MockUserDB) SetGender(ctx context.Context, userID int64, gender string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.ensureUser(userID)
	user.Gender = gender
	m.users[userID] = user
	return nil
}

// SetBirthData stores the birth date, time and coordinates
func (m *MockUserDB) SetBirthData(ctx context.Context, userID int64, data models.BirthData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.ensureUser(userID)
	user.BirthDate = data.Date
	user.BirthTime = data.Time
	user.Lat = data.Lat
	user.Lon = data.Lon
	user.HasCoords = true
	m.users[userID] = user
	return nil
}

// SetTzOffsetMinutes stores the timezone offset
func (m *MockUserDB) SetTzOffsetMinutes(ctx context.Context, userID int64, minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.ensureUser(userID)
	user.TzOffsetMinutes = minutes
	user.HasTzOffset = true
	m.users[userID] = user
	return nil
}

// Close does nothing for the mock store
func (m *MockUserDB) Close() error {
	return nil
}

// MockHistoryDB is an in-memory implementation of the HistoryStore interface
type MockHistoryDB struct {
	mu    sync.RWMutex
	draws []models.Draw
}

// NewMockHistoryDB creates a new mock history store
func NewMockHistoryDB() *MockHistoryDB {
	return &MockHistoryDB{draws: make([]models.Draw, 0)}
}

// Initialize does nothing for the mock store
func (m *MockHistoryDB) Initialize(ctx context.Context) error {
	return nil
}

// RecordDraw appends a draw
func (m *MockHistoryDB) RecordDraw(ctx context.Context, draw models.Draw) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = append(m.draws, draw)
	return nil
}

// GetLastDraws returns the most recent draws for the user, newest first
func (m *MockHistoryDB) GetLastDraws(ctx context.Context, userID int64, limit int) ([]models.Draw, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var draws []models.Draw
	for _, draw := range m.draws {
		if draw.UserID == userID {
			draws = append(draws, draw)
		}
	}

	// Sort by creation time descending
	sort.Slice(draws, func(i, j int) bool {
		return draws[i].CreatedAt.After(draws[j].CreatedAt)
	})

	if limit < len(draws) {
		draws = draws[:limit]
	}
	return draws, nil
}

// GetVerdictStats returns per-verdict counts since the given time
func (m *MockHistoryDB) GetVerdictStats(ctx context.Context, userID int64, since time.Time) ([]models.VerdictStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, draw := range m.draws {
		if draw.UserID != userID || draw.CreatedAt.Before(since) {
			continue
		}
		counts[draw.Verdict]++
	}

	var stats []models.VerdictStat
	for verdict, count := range counts {
		stats = append(stats, models.VerdictStat{Verdict: verdict, Count: count})
	}

	// Sort by count descending, then by verdict
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Verdict < stats[j].Verdict
	})
	return stats, nil
}

// Close does nothing for the mock store
func (m *MockHistoryDB) Close() error {
	return nil
}
