// Package db stores timeago entries in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultDBPath is the default location for the entries database.
	DefaultDBPath = "~/.timeago/timeago.db"
	// DefaultDBDir is the directory containing the database.
	DefaultDBDir = "~/.timeago"
)

// DB wraps a sql.DB connection.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates a database at path. An empty path means
// DefaultDBPath.
func Open(path string) (*DB, error) {
	path = ResolvePath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the file path of the database.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// ResolvePath expands ~ and substitutes DefaultDBPath for an empty path.
func ResolvePath(path string) string {
	if path == "" {
		path = DefaultDBPath
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Exists checks if the database file exists at the given path.
func Exists(path string) bool {
	_, err := os.Stat(ResolvePath(path))
	return err == nil
}

// Delete removes the database file at path along with its WAL and SHM files.
func Delete(path string) error {
	path = ResolvePath(path)
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
	return os.Remove(path)
}

// FormatTime formats t as RFC 3339 in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses a value written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
