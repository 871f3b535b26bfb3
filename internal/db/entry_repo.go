package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spetersoncode/timeago/internal/models"
)

// EntryRepo provides database operations for entries.
type EntryRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewEntryRepo creates a new EntryRepo.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db, now: time.Now}
}

const entryColumns = `id, key, datetime, title, rendered, is_time, created_at, updated_at`

// Create inserts a new entry. Rendered is left empty until the first render.
func (r *EntryRepo) Create(e *models.Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	exists, err := r.Exists(e.Key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry %s already exists", e.Key)
	}

	now := r.now()
	nowStr := FormatTime(now)

	query := `
		INSERT INTO entries (key, datetime, title, rendered, is_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, e.Key, e.Datetime, e.Title, e.Rendered, e.IsTime, nowStr, nowStr)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get entry id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now.UTC()
	e.UpdatedAt = now.UTC()
	return nil
}

// GetByKey retrieves an entry by key. It returns nil when there is none.
func (r *EntryRepo) GetByKey(key string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE key = ?`
	e, err := scanEntry(r.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %s: %w", key, err)
	}
	return e, nil
}

// List retrieves all entries ordered by key.
func (r *EntryRepo) List() ([]*models.Entry, error) {
	rows, err := r.db.Query(`SELECT ` + entryColumns + ` FROM entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// Exists checks if an entry with the given key exists.
func (r *EntryRepo) Exists(key string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM entries WHERE key = ? LIMIT 1`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}
	return true, nil
}

// UpdateDatetime replaces the datetime source of an entry.
func (r *EntryRepo) UpdateDatetime(key, datetime string) error {
	return r.updateField(key, "datetime", datetime)
}

// UpdateTitle replaces the title of an entry.
func (r *EntryRepo) UpdateTitle(key, title string) error {
	return r.updateField(key, "title", title)
}

// UpdateRendered stores the latest rendered phrase.
func (r *EntryRepo) UpdateRendered(key, rendered string) error {
	return r.updateField(key, "rendered", rendered)
}

func (r *EntryRepo) updateField(key, field, value string) error {
	switch field {
	case "datetime", "title", "rendered":
	default:
		return fmt.Errorf("cannot update field: %s", field)
	}

	query := fmt.Sprintf("UPDATE entries SET %s = ?, updated_at = ? WHERE key = ?", field)
	result, err := r.db.Exec(query, value, FormatTime(r.now()), key)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", field, err)
	}
	return checkAffected(result, key)
}

// Delete deletes an entry by key.
func (r *EntryRepo) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return checkAffected(result, key)
}

// ErrEntryNotFound is returned by updates and deletes of a missing key.
var ErrEntryNotFound = errors.New("entry not found")

func checkAffected(result sql.Result, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*models.Entry, error) {
	var e models.Entry
	var created, updated string

	if err := row.Scan(&e.ID, &e.Key, &e.Datetime, &e.Title, &e.Rendered, &e.IsTime, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if e.CreatedAt, err = ParseTime(created); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	if e.UpdatedAt, err = ParseTime(updated); err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", updated, err)
	}
	return &e, nil
}
