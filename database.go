package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite telemetry database. Only operational events are
// stored here; game results are never persisted.
type DB struct {
	conn *sql.DB
}

// EventRow represents one recorded telemetry event
type EventRow struct {
	ID        int64
	Type      string
	ConnKey   string
	Data      string
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		conn_key TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// InsertEvents writes a batch of events in one transaction.
func (db *DB) InsertEvents(events []AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO events (type, conn_key, data, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(e.Type, e.ConnKey, e.Data, e.Timestamp); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// CountEvents returns the number of stored events of the given type,
// or all events when evtType is empty.
func (db *DB) CountEvents(evtType string) (int, error) {
	var n int
	var err error
	if evtType == "" {
		err = db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&n)
	} else {
		err = db.conn.QueryRow("SELECT COUNT(*) FROM events WHERE type = ?", evtType).Scan(&n)
	}
	return n, err
}
