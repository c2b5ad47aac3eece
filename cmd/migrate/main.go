package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"tarotbot/internal/storage/ch"
)

// Applies the goose migrations for the draws history table to ClickHouse.
// Usage: migrate [up|down|status|version|create <name>]

const migrationsDir = "./migrations"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := ch.GooseDSN(
		envOr("CLICKHOUSE_HOST", "localhost"),
		envOr("CLICKHOUSE_PORT", "9000"),
		envOr("CLICKHOUSE_DATABASE", "default"),
		envOr("CLICKHOUSE_USER", "default"),
		os.Getenv("CLICKHOUSE_PASSWORD"),
		os.Getenv("CLICKHOUSE_USE_TLS") == "true",
	)

	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		log.Fatalf("Failed to open ClickHouse connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping ClickHouse: %v", err)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := run(db, command, os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, command string, args []string) error {
	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Printf("Running migrations: %s", command)
	switch command {
	case "up":
		if err := goose.Up(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Println("Draws schema is up to date")
	case "down":
		if err := goose.Down(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		log.Println("Rolled back one migration")
	case "status":
		if err := goose.Status(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
	case "version":
		version, err := goose.GetDBVersion(db)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Printf("Current migration version: %d", version)
	case "create":
		if len(args) < 1 {
			return fmt.Errorf("usage: migrate create <migration_name>")
		}
		if err := goose.Create(db, migrationsDir, args[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		log.Printf("Created migration: %s", args[0])
	default:
		return fmt.Errorf("unknown command %q (available: up, down, status, version, create)", command)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
