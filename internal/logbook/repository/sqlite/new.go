package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"support-logbook/internal/logbook/repository"
	"support-logbook/pkg/log"
)

type implRepository struct {
	db *sql.DB
	l  log.Logger
}

// New creates a SQLite-backed RecordRepository.
func New(db *sql.DB, l log.Logger) repository.RecordRepository {
	if db == nil {
		panic("logbook/repository/sqlite: db is required")
	}
	return &implRepository{db: db, l: l}
}

// Open opens (and creates if needed) the logbook database at dbPath and
// applies the schema. busy_timeout and WAL are set via DSN pragmas so they
// apply to every pooled connection.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS records (
	  id         INTEGER PRIMARY KEY AUTOINCREMENT,
	  author     TEXT NOT NULL,
	  category   TEXT NOT NULL,
	  reference  TEXT NOT NULL,
	  duration   TEXT NOT NULL,
	  created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_created_at
	ON records(created_at DESC);

	CREATE INDEX IF NOT EXISTS idx_records_author_created_at
	ON records(author, created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
