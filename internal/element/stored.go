package element

import (
	"sync"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/models"
)

// EntryStore is the storage a Stored element reads and writes through.
// db.EntryRepo implements it.
type EntryStore interface {
	GetByKey(key string) (*models.Entry, error)
	UpdateDatetime(key, datetime string) error
	UpdateTitle(key, title string) error
	UpdateRendered(key, rendered string) error
}

// Stored is an element backed by a stored entry. Reads go to the store so a
// refresh picks up changes made by other processes; the last known entry is
// used when the store cannot be read.
type Stored struct {
	store EntryStore

	mu    sync.Mutex
	entry models.Entry
}

// NewStored wraps entry. The entry must already exist in store.
func NewStored(store EntryStore, entry *models.Entry) *Stored {
	return &Stored{store: store, entry: *entry}
}

// Key implements scheduler.Element.
func (s *Stored) Key() string {
	return s.entry.Key
}

// IsTime implements scheduler.Element.
func (s *Stored) IsTime() bool {
	return s.entry.IsTime
}

// Entry returns a copy of the last known entry.
func (s *Stored) Entry() models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry
}

func (s *Stored) reload() models.Entry {
	e, err := s.store.GetByKey(s.entry.Key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && e != nil {
		s.entry = *e
	}
	return s.entry
}

// Attr implements scheduler.Element.
func (s *Stored) Attr(name string) string {
	e := s.reload()
	switch name {
	case attrDatetime:
		return e.Datetime
	case attrTitle:
		return e.Title
	}
	return ""
}

// SetAttr implements scheduler.Element. Only datetime and title are stored.
func (s *Stored) SetAttr(name, value string) error {
	var err error
	switch name {
	case attrDatetime:
		err = s.store.UpdateDatetime(s.entry.Key, value)
	case attrTitle:
		err = s.store.UpdateTitle(s.entry.Key, value)
	default:
		return errors.InvalidArgs("entries have no %q attribute", name)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if name == attrDatetime {
		s.entry.Datetime = value
	} else {
		s.entry.Title = value
	}
	return nil
}

// TextIsRendered implements scheduler.RenderedText. The stored text is the
// phrase written by the last render, possibly by another process.
func (s *Stored) TextIsRendered() bool {
	return true
}

// Text implements scheduler.Element.
func (s *Stored) Text() string {
	return s.reload().Rendered
}

// SetText implements scheduler.Element.
func (s *Stored) SetText(text string) error {
	if err := s.store.UpdateRendered(s.entry.Key, text); err != nil {
		return err
	}
	s.mu.Lock()
	s.entry.Rendered = text
	s.mu.Unlock()
	return nil
}
