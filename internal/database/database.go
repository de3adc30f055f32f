// Package database sets up/opens the program database.
package database

import (
	"database/sql"
	"fmt"
	"net/url"

	"zeku/internal/database/migrations"

	// Package sqlite3 provides interface to SQLite3 databases.
	_ "github.com/mattn/go-sqlite3"
)

const (
	dbDriver = "sqlite3"
)

// Database holds the database handle for Zeku.
type Database struct {
	DB   *sql.DB
	Path string
}

// Open opens (creating if needed) the database at path and applies migrations.
//
// Connection pragmas are set through the DSN so every pooled connection gets
// them. Transactions begin IMMEDIATE so concurrent writers queue on the busy
// timeout instead of failing on lock upgrade.
func Open(path string) (*Database, error) {
	db, err := sql.Open(dbDriver, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database at path %q: %w", path, err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db, Path: path}, nil
}

// Close closes the underlying handle.
func (d *Database) Close() error {
	return d.DB.Close()
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_synchronous", "NORMAL")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}
