// Package database provides SQLite connection management and schema setup.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // database/sql driver
)

// Config holds database configuration.
type Config struct {
	// Path is the SQLite file location. ":memory:" opens a throwaway
	// in-memory database.
	Path string

	BusyTimeout time.Duration
}

// DefaultConfig returns the configuration used when nothing is provided.
func DefaultConfig(dataDir string) Config {
	return Config{
		Path:        filepath.Join(dataDir, "prodtrack.db"),
		BusyTimeout: 5 * time.Second,
	}
}

// Open opens the SQLite database, creating the parent directory and schema
// as needed. Callers decide what to do when this fails; the rest of the
// system runs against in-memory stores in that case.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	busy := cfg.BusyTimeout
	if busy == 0 {
		busy = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		cfg.Path, busy.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// churn under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Migrate creates the schema. Statements are idempotent so startup can run
// them unconditionally.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'tablet',
			status TEXT NOT NULL DEFAULT 'pending',
			operator TEXT,
			ip TEXT,
			user_agent TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			last_activity DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			unit TEXT NOT NULL DEFAULT 'un',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_code TEXT NOT NULL,
			products_data TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			device_id TEXT,
			operator TEXT,
			notes TEXT,
			started_at DATETIME,
			completed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_code ON orders (order_code)`,
		`CREATE TABLE IF NOT EXISTS logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			level TEXT NOT NULL DEFAULT 'info',
			message TEXT NOT NULL,
			details TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT UNIQUE NOT NULL,
			value TEXT,
			description TEXT,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddLog appends an entry to the activity log table. Failures are returned
// for the caller to log; they never block the operation being recorded.
func AddLog(ctx context.Context, db *sql.DB, logType, level, message string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO logs (type, level, message, created_at) VALUES (?, ?, ?, ?)`,
		logType, level, message, time.Now(),
	)
	return err
}
