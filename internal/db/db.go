// Package db owns the SQLite connection for the run ledger.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var (
	conn        *sql.DB
	initialized bool
)

// GetDB returns the ledger database connection, initializing it on first use.
func GetDB() (*sql.DB, error) {
	if conn != nil {
		return conn, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".autonote")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .autonote directory: %w", err)
	}

	conn, err = sql.Open("sqlite3", filepath.Join(dir, "autonote.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Atomic appends require a real fsync on commit.
	if _, err := conn.Exec("PRAGMA synchronous = FULL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if !initialized {
		initialized = true
		if err := InitSchema(conn); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return conn, nil
}

// Close closes the database connection.
func Close() error {
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// InitSchema creates the ledger table if missing. The table is append-only:
// nothing in this program updates or deletes rows.
func InitSchema(database *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	theme_id        TEXT NOT NULL,
	title           TEXT NOT NULL,
	recorded_at     TIMESTAMP NOT NULL,
	draft_quality   INTEGER NOT NULL,
	overall_outcome TEXT NOT NULL,
	attempts        TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_theme ON runs(theme_id);
`
	if _, err := database.Exec(schema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}
