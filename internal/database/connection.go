package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the persistence collaborator handle. It is constructed once at
// process start and injected into everything that needs it; there is no
// package-level connection.
type Store struct {
	db *sqlx.DB
}

// Connect establishes the database connection based on the environment:
// postgres when DATABASE_URL is set, a local SQLite file otherwise.
func Connect() (*Store, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return Open("postgres", url)
	}

	// Create data directory if it doesn't exist
	dataDir := "data"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	return Open("sqlite3", filepath.Join(dataDir, "coachmail.db"))
}

// Open connects to a specific driver and DSN. For SQLite the schema is
// initialized in place; postgres schema management is owned externally.
func Open(driverName, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	store := &Store{db: db}

	if driverName == "sqlite3" {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := store.initializeSchema(); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func (s *Store) initializeSchema() error {
	// Create recipients table
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS recipients (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			goals_text TEXT NOT NULL DEFAULT '',
			current_week INTEGER NOT NULL DEFAULT 0,
			last_delivery_at TIMESTAMP,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create recipients table: %v", err)
	}

	// Create deliveries table. The uniqueness constraint on
	// recipient+week is the idempotency key for the whole engine.
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipient_id TEXT NOT NULL,
			week_number INTEGER NOT NULL,
			action_content TEXT NOT NULL,
			sent_at TIMESTAMP NOT NULL,
			delivery_status TEXT NOT NULL DEFAULT 'sent',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (recipient_id) REFERENCES recipients(id),
			UNIQUE(recipient_id, week_number)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create deliveries table: %v", err)
	}

	return nil
}
