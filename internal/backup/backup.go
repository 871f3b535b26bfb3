// Package backup keeps rotating snapshots of the entries database.
//
// Snapshots are named after the database file: timeago.db.bak.1,
// timeago.db.bak.2, and so on, where 1 is the most recent.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spetersoncode/timeago/internal/config"
)

// Manager creates and rotates snapshots of one database file.
type Manager struct {
	dbPath    string
	backupDir string
	prefix    string
	maxCount  int
}

// NewManager creates a manager for the database at dbPath. An empty
// cfg.Dir keeps snapshots next to the database.
func NewManager(dbPath string, cfg config.BackupConfig) *Manager {
	backupDir := cfg.Dir
	if backupDir == "" {
		backupDir = filepath.Dir(dbPath)
	}
	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
		prefix:    filepath.Base(dbPath) + ".bak.",
		maxCount:  cfg.MaxCount,
	}
}

// Enabled reports whether snapshots are kept at all.
func (m *Manager) Enabled() bool {
	return m.maxCount > 0
}

// Create rotates the existing snapshots and writes a new one from database.
// It returns the new snapshot's path, or "" when snapshots are disabled.
func (m *Manager) Create(database *sql.DB) (string, error) {
	if !m.Enabled() {
		return "", nil
	}
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := m.rotate(); err != nil {
		return "", fmt.Errorf("rotating backups: %w", err)
	}

	path := m.numbered(1)
	// VACUUM INTO writes a consistent copy even with a live WAL.
	if _, err := database.Exec(`VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// List returns the existing snapshot paths, newest first.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var numbers []int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), m.prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), m.prefix))
		if err != nil || n < 1 {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	paths := make([]string, len(numbers))
	for i, n := range numbers {
		paths[i] = m.numbered(n)
	}
	return paths, nil
}

// Dir returns the directory snapshots are written to.
func (m *Manager) Dir() string {
	return m.backupDir
}

func (m *Manager) numbered(n int) string {
	return filepath.Join(m.backupDir, m.prefix+strconv.Itoa(n))
}

// rotate shifts every snapshot up by one and deletes those past maxCount.
// It works oldest first so no rename overwrites a live snapshot.
func (m *Manager) rotate() error {
	paths, err := m.List()
	if err != nil {
		return err
	}

	for i := len(paths) - 1; i >= 0; i-- {
		n, _ := strconv.Atoi(strings.TrimPrefix(filepath.Base(paths[i]), m.prefix))
		if n+1 > m.maxCount {
			if err := os.Remove(paths[i]); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting old backup %s: %w", paths[i], err)
			}
			continue
		}
		if err := os.Rename(paths[i], m.numbered(n+1)); err != nil {
			return fmt.Errorf("renaming backup %s: %w", paths[i], err)
		}
	}
	return nil
}
