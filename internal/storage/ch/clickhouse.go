package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"tarotbot/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseDB is a ClickHouse-backed draw history store.
type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// GooseDSN builds the database/sql DSN the goose migration tooling connects
// with. Port is kept as a string because it comes straight from the
// environment or a mapped container port.
func GooseDSN(host, port, database, user, password string, useTLS bool) string {
	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&max_execution_time=60",
		user, password, host, port, database)
	if useTLS {
		dsn += "&secure=true"
	}
	return dsn
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	// This method is kept for interface compatibility
	return nil
}

// RecordDraw appends a revealed draw to the history.
func (db *ClickHouseDB) RecordDraw(ctx context.Context, draw models.Draw) error {
	err := db.conn.Exec(ctx, `
		INSERT INTO draws (created_at, day, user_id, chat_id, question, card_id, verdict)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, draw.CreatedAt, draw.Day, draw.UserID, draw.ChatID, draw.Question, uint8(draw.CardID), draw.Verdict)
	if err != nil {
		return fmt.Errorf("failed to record draw: %w", err)
	}
	return nil
}

// GetLastDraws returns the most recent draws for the user, newest first.
func (db *ClickHouseDB) GetLastDraws(ctx context.Context, userID int64, limit int) ([]models.Draw, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT created_at, day, user_id, chat_id, question, card_id, verdict
		FROM draws WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get last draws: %w", err)
	}
	defer rows.Close()

	var draws []models.Draw
	for rows.Next() {
		var (
			draw   models.Draw
			day    time.Time
			cardID uint8
		)
		if err := rows.Scan(&draw.CreatedAt, &day, &draw.UserID, &draw.ChatID, &draw.Question, &cardID, &draw.Verdict); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draw.Day = day.Format("2006-01-02")
		draw.CardID = int(cardID)
		draws = append(draws, draw)
	}
	return draws, nil
}

// GetVerdictStats returns per-verdict draw counts for the user since the
// given time, ordered by count descending.
func (db *ClickHouseDB) GetVerdictStats(ctx context.Context, userID int64, since time.Time) ([]models.VerdictStat, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT verdict, count() AS cnt
		FROM draws
		WHERE user_id = ? AND created_at >= ?
		GROUP BY verdict
		ORDER BY cnt DESC, verdict
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get verdict stats: %w", err)
	}
	defer rows.Close()

	var stats []models.VerdictStat
	for rows.Next() {
		var (
			stat  models.VerdictStat
			count uint64
		)
		if err := rows.Scan(&stat.Verdict, &count); err != nil {
			return nil, fmt.Errorf("failed to scan verdict stat: %w", err)
		}
		stat.Count = int(count)
		stats = append(stats, stat)
	}
	return stats, nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
