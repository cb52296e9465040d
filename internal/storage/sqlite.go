package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // database/sql driver
)

// SQLiteStorage implements persistence over SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and initializes the schema.
// Use ":memory:" for tests.
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := InitSchema(db); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// modernc.org/sqlite requires a single connection for in-process
	// databases to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Ping verifies the database connection is alive.
func (s *SQLiteStorage) Ping() error {
	return s.db.Ping()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// getDB exposes the connection for tests in this package.
func (s *SQLiteStorage) getDB() *sql.DB {
	return s.db
}

// millis converts a time to the stored millisecond representation.
func millis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts a stored millisecond timestamp back to UTC time.
func fromMillis(m int64) time.Time {
	return time.UnixMilli(m).UTC()
}

// nullMillis converts an optional time for storage.
func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

// timePtr converts an optional stored timestamp.
func timePtr(m sql.NullInt64) *time.Time {
	if !m.Valid {
		return nil
	}
	t := fromMillis(m.Int64)
	return &t
}
