package internal

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// OpenDatabase opens (creating if needed) the SQLite database at path and applies migrations
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StoreError{Op: "open", Err: fmt.Errorf("create database dir: %w", err)}
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}
	// SQLite allows a single writer; one connection turns every transaction
	// below into a serialised critical section.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate executes the embedded schema migrations in name order. Every
// migration is idempotent.
func Migrate(db *sql.DB) error {
	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		return &StoreError{Op: "migrate", Err: fmt.Errorf("read embedded migrations: %w", err)}
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := embeddedMigrations.ReadFile("migrations/" + name)
		if err != nil {
			return &StoreError{Op: "migrate", Err: fmt.Errorf("read migration %s: %w", name, err)}
		}
		if _, err := db.Exec(string(content)); err != nil {
			return &StoreError{Op: "migrate", Err: fmt.Errorf("exec migration %s: %w", name, err)}
		}
	}
	return nil
}
