package models

import (
	"fmt"
	"regexp"
	"time"
)

// Entry is a named timestamp whose relative-time phrase is kept up to date.
// It mirrors a displayed element: Datetime is the source for time entries,
// Title the source for the others.
type Entry struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Datetime  string    `json:"datetime,omitempty"`
	Title     string    `json:"title,omitempty"`
	Rendered  string    `json:"rendered"`
	IsTime    bool      `json:"is_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// entryKeyRegex validates entry keys (lowercase slug, 1-64 chars).
var entryKeyRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ValidateEntryKey validates an entry key.
func ValidateEntryKey(key string) error {
	if key == "" {
		return fmt.Errorf("entry key cannot be empty")
	}
	if !entryKeyRegex.MatchString(key) {
		return fmt.Errorf("entry key must be 1-64 lowercase letters, digits, dots, dashes or underscores, starting with a letter or digit")
	}
	return nil
}

// Source returns the raw timestamp the entry renders from.
func (e *Entry) Source() string {
	if e.IsTime {
		return e.Datetime
	}
	return e.Title
}

// Validate validates the entry fields.
func (e *Entry) Validate() error {
	if err := ValidateEntryKey(e.Key); err != nil {
		return err
	}
	if e.Source() == "" {
		if e.IsTime {
			return fmt.Errorf("time entry %s needs a datetime", e.Key)
		}
		return fmt.Errorf("entry %s needs a title timestamp", e.Key)
	}
	return nil
}
