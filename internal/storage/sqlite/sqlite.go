package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"tarotbot/internal/models"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id INTEGER PRIMARY KEY,
    name TEXT,
    age INTEGER,
    gender TEXT,
    birth_date TEXT,
    birth_time TEXT,
    lat REAL,
    lon REAL,
    tz_offset_minutes INTEGER,
    free_tokens INTEGER NOT NULL DEFAULT 0,
    free_tokens_limit INTEGER NOT NULL DEFAULT 50000,
    paid_tokens INTEGER NOT NULL DEFAULT 0,
    subscription INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// UserDB is a SQLite-backed user store.
type UserDB struct {
	conn *sql.DB
}

// Open creates a new database connection for the given SQLite path.
func Open(path string) (*UserDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	return &UserDB{conn: db}, nil
}

// Initialize applies the schema.
func (db *UserDB) Initialize(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (db *UserDB) ensureUser(ctx context.Context, userID int64) error {
	_, err := db.conn.ExecContext(ctx, `INSERT OR IGNORE INTO users (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("failed to ensure user %d: %w", userID, err)
	}
	return nil
}

// GetUser returns the profile for the given user, creating an empty row on
// first access.
func (db *UserDB) GetUser(ctx context.Context, userID int64) (models.User, error) {
	if err := db.ensureUser(ctx, userID); err != nil {
		return models.User{}, err
	}

	row := db.conn.QueryRowContext(ctx, `
		SELECT name, age, gender, birth_date, birth_time, lat, lon, tz_offset_minutes,
		       free_tokens, free_tokens_limit, paid_tokens, subscription
		FROM users WHERE user_id = ?
	`, userID)

	var (
		name, gender, birthDate, birthTime sql.NullString
		age, tzOffset                      sql.NullInt64
		lat, lon                           sql.NullFloat64
	)
	user := models.User{UserID: userID}
	err := row.Scan(&name, &age, &gender, &birthDate, &birthTime, &lat, &lon, &tzOffset,
		&user.FreeTokens, &user.FreeTokensLimit, &user.PaidTokens, &user.Subscription)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	user.Name = name.String
	user.Age = int(age.Int64)
	user.Gender = gender.String
	user.BirthDate = birthDate.String
	user.BirthTime = birthTime.String
	if lat.Valid && lon.Valid {
		user.Lat = lat.Float64
		user.Lon = lon.Float64
		user.HasCoords = true
	}
	if tzOffset.Valid {
		user.TzOffsetMinutes = int(tzOffset.Int64)
		user.HasTzOffset = true
	}
	return user, nil
}

func (db *UserDB) updateField(ctx context.Context, userID int64, field string, value any) error {
	if err := db.ensureUser(ctx, userID); err != nil {
		return err
	}
	// field is always one of the fixed column names below, never user input
	_, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ? WHERE user_id = ?`, field), value, userID)
	if err != nil {
		return fmt.Errorf("failed to update %s for user %d: %w", field, userID, err)
	}
	return nil
}

// SetName updates the display name.
func (db *UserDB) SetName(ctx context.Context, userID int64, name string) error {
	return db.updateField(ctx, userID, "name", name)
}

// SetAge updates the age.
func (db *UserDB) SetAge(ctx context.Context, userID int64, age int) error {
	return db.updateField(ctx, userID, "age", age)
}

// SetGender updates the gender.
func (db *UserDB) SetGender(ctx context.Context, userID int64, gender string) error {
	return db.updateField(ctx, userID, "gender", gender)
}

// SetBirthData stores the birth date, time and coordinates in one update.
func (db *UserDB) SetBirthData(ctx context.Context, userID int64, data models.BirthData) error {
	if err := db.ensureUser(ctx, userID); err != nil {
		return err
	}
	_, err := db.conn.ExecContext(ctx, `
		UPDATE users SET birth_date = ?, birth_time = ?, lat = ?, lon = ? WHERE user_id = ?
	`, data.Date, data.Time, data.Lat, data.Lon, userID)
	if err != nil {
		return fmt.Errorf("failed to update birth data for user %d: %w", userID, err)
	}
	return nil
}

// SetTzOffsetMinutes stores the timezone offset from UTC in minutes.
func (db *UserDB) SetTzOffsetMinutes(ctx context.Context, userID int64, minutes int) error {
	return db.updateField(ctx, userID, "tz_offset_minutes", minutes)
}

// Close closes the database connection.
func (db *UserDB) Close() error {
	return db.conn.Close()
}
