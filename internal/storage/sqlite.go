package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqliteFileName is the database file created inside the data directory.
const sqliteFileName = "taskpad.db"

const createRecords = `CREATE TABLE IF NOT EXISTS records (
    collection TEXT NOT NULL,
    position INTEGER NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (collection, position)
);`

// SQLite stores every collection in a single records table, one row per
// record, ordered by position.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database in dataDir and ensures
// the schema exists.
func NewSQLite(dataDir string) (*SQLite, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	return OpenSQLite(filepath.Join(dataDir, sqliteFileName))
}

// OpenSQLite opens the database at dsn and ensures the schema exists.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	// A single connection keeps writers serialized and in-memory databases
	// shared between calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createRecords); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Load returns the records of collection in saved order.
func (s *SQLite) Load(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM records WHERE collection = ? ORDER BY position",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	records := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", collection, err)
		}
		if !json.Valid([]byte(body)) {
			continue
		}
		records = append(records, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return records, nil
}

// Save replaces the contents of collection in one transaction.
func (s *SQLite) Save(ctx context.Context, collection string, records []json.RawMessage) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	for i, rec := range records {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO records (collection, position, body) VALUES (?, ?, ?)",
			collection, i, string(rec),
		); err != nil {
			return fmt.Errorf("inserting %s record %d: %w", collection, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", collection, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
