// Package service applies the single-element scheduler to every stored entry.
package service

import (
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/spetersoncode/timeago/internal/db"
	"github.com/spetersoncode/timeago/internal/element"
	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/models"
	"github.com/spetersoncode/timeago/internal/phrase"
	"github.com/spetersoncode/timeago/internal/scheduler"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/state"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

// Board keeps the phrases of stored entries up to date.
type Board struct {
	repo   *db.EntryRepo
	sched  *scheduler.Scheduler
	logger logr.Logger
}

// NewBoard creates a Board rendering through sched.
func NewBoard(database *sql.DB, sched *scheduler.Scheduler, logger logr.Logger) *Board {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Board{
		repo:   db.NewEntryRepo(database),
		sched:  sched,
		logger: logger,
	}
}

// EntryStatus is an entry together with its tracking state.
type EntryStatus struct {
	models.Entry
	State string                   `json:"state"`
	Last  *scheduler.RefreshResult `json:"last_refresh,omitempty"`
}

// AddInput holds the input for adding an entry.
type AddInput struct {
	Key       string
	Timestamp string
	Title     string
	// Plain entries keep the timestamp in the title instead of datetime.
	Plain bool
}

// Add stores a new entry and attaches it.
func (b *Board) Add(input AddInput) (*EntryStatus, error) {
	if err := models.ValidateEntryKey(input.Key); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}
	instant, err := timestamp.ParseInput(input.Timestamp)
	if err != nil {
		return nil, err
	}

	exists, err := b.repo.Exists(input.Key)
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to check entry %s", input.Key)
	}
	if exists {
		return nil, errors.InvalidArgs("entry %s already exists", input.Key).
			WithSuggestion("Use 'timeago set' to change its timestamp.")
	}

	e := &models.Entry{Key: input.Key, Title: input.Title, IsTime: !input.Plain}
	if input.Plain {
		e.Title = timestamp.Format(instant)
	} else {
		e.Datetime = timestamp.Format(instant)
	}
	if err := b.repo.Create(e); err != nil {
		return nil, errors.WrapInternal(err, "failed to create entry %s", input.Key)
	}

	b.logger.V(1).Info("entry added", "key", e.Key, "instant", e.Source())
	return b.attachEntry(e)
}

// Get returns one entry.
func (b *Board) Get(key string) (*EntryStatus, error) {
	e, err := b.load(key)
	if err != nil {
		return nil, err
	}
	return b.status(e), nil
}

// List returns every entry ordered by key.
func (b *Board) List() ([]*EntryStatus, error) {
	entries, err := b.repo.List()
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to list entries")
	}
	out := make([]*EntryStatus, 0, len(entries))
	for _, e := range entries {
		out = append(out, b.status(e))
	}
	return out, nil
}

// AttachAll attaches every stored entry that is not attached yet. Entries
// that fail to attach are logged and skipped.
func (b *Board) AttachAll() ([]*EntryStatus, error) {
	entries, err := b.repo.List()
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to list entries")
	}
	out := make([]*EntryStatus, 0, len(entries))
	for _, e := range entries {
		st, err := b.attachEntry(e)
		if err != nil {
			b.logger.Error(err, "failed to attach entry", "key", e.Key)
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// Set persists a new timestamp for key and renders it.
func (b *Board) Set(key, input string) (*EntryStatus, error) {
	instant, err := timestamp.ParseInput(input)
	if err != nil {
		return nil, err
	}
	h, el, err := b.ensureAttached(key)
	if err != nil {
		return nil, err
	}

	attr := scheduler.AttrTitle
	if el.IsTime() {
		attr = scheduler.AttrDatetime
	}
	if err := el.SetAttr(attr, timestamp.Format(instant)); err != nil {
		return nil, b.storeError(err, key)
	}

	res, err := h.Update(instant)
	if err != nil {
		return nil, err
	}
	return b.statusWith(el, res)
}

// Refresh re-reads key's stored timestamp and renders it.
func (b *Board) Refresh(key string) (*EntryStatus, error) {
	h, el, err := b.ensureAttached(key)
	if err != nil {
		return nil, err
	}
	res, err := h.RefreshFromSource()
	if err != nil {
		return nil, err
	}
	return b.statusWith(el, res)
}

// Invoke runs a named scheduler action on a stored entry. Actions other than
// init need the entry to be attached already.
func (b *Board) Invoke(key, action string, arg interface{}) (*EntryStatus, error) {
	e, err := b.load(key)
	if err != nil {
		return nil, err
	}

	var el scheduler.Element
	if h, ok := b.sched.Lookup(key); ok {
		el = h.Element()
	} else {
		el = element.NewStored(b.repo, e)
	}

	res, err := b.sched.Invoke(action, el, arg)
	if err != nil {
		return nil, err
	}

	fresh, err := b.load(key)
	if err != nil {
		return nil, err
	}
	st := b.status(fresh)
	st.Last = res
	return st, nil
}

// Remove disposes key and deletes it.
func (b *Board) Remove(key string) error {
	b.sched.Dispose(key)
	if err := b.repo.Delete(key); err != nil {
		return b.storeError(err, key)
	}
	b.logger.V(1).Info("entry removed", "key", key)
	return nil
}

// Attach attaches one stored entry. An attached entry is left as it is.
func (b *Board) Attach(key string) (*EntryStatus, error) {
	h, el, err := b.ensureAttached(key)
	if err != nil {
		return nil, err
	}
	return b.statusWith(el, h.Last())
}

// Reference returns the instant key is rendered against, if it is attached
// with a valid one.
func (b *Board) Reference(key string) (time.Time, bool) {
	h, ok := b.sched.Lookup(key)
	if !ok {
		return time.Time{}, false
	}
	return h.Reference()
}

// Detach disposes key without deleting it.
func (b *Board) Detach(key string) {
	b.sched.Dispose(key)
}

// Attached lists the keys currently attached.
func (b *Board) Attached() []string {
	return b.sched.Keys()
}

// Phrase renders instant against now, or against the scheduler's clock when
// now is zero.
func (b *Board) Phrase(instant, now time.Time, opts settings.Options) (string, error) {
	if now.IsZero() {
		return b.sched.ToPhrase(instant, opts)
	}
	return phrase.Between(instant, now, settings.Resolve(opts))
}

// Close disposes every attached entry.
func (b *Board) Close() {
	b.sched.Close()
}

func (b *Board) load(key string) (*models.Entry, error) {
	e, err := b.repo.GetByKey(key)
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to get entry %s", key)
	}
	if e == nil {
		return nil, errors.NotFound("entry %s not found", key).
			WithSuggestion("Run 'timeago list' to see stored entries.")
	}
	return e, nil
}

func (b *Board) ensureAttached(key string) (*scheduler.Handle, *element.Stored, error) {
	if h, ok := b.sched.Lookup(key); ok && h.State() == state.Active {
		if el, ok := h.Element().(*element.Stored); ok {
			return h, el, nil
		}
	}
	e, err := b.load(key)
	if err != nil {
		return nil, nil, err
	}
	h, err := b.sched.Attach(element.NewStored(b.repo, e), scheduler.AttachOptions{})
	if err != nil {
		return nil, nil, err
	}
	return h, storedOf(h), nil
}

// storedOf returns the stored element behind h. Handles created by a Board
// always wrap one.
func storedOf(h *scheduler.Handle) *element.Stored {
	el, _ := h.Element().(*element.Stored)
	return el
}

func (b *Board) attachEntry(e *models.Entry) (*EntryStatus, error) {
	if h, ok := b.sched.Lookup(e.Key); ok && h.State() == state.Active {
		return b.status(e), nil
	}
	h, err := b.sched.Attach(element.NewStored(b.repo, e), scheduler.AttachOptions{})
	if err != nil {
		return nil, err
	}
	return b.statusWith(storedOf(h), h.Last())
}

func (b *Board) status(e *models.Entry) *EntryStatus {
	st := &EntryStatus{Entry: *e, State: state.Unattached.String()}
	if h, ok := b.sched.Lookup(e.Key); ok {
		st.State = h.State().String()
		st.Last = h.Last()
	}
	return st
}

func (b *Board) statusWith(el *element.Stored, res *scheduler.RefreshResult) (*EntryStatus, error) {
	e := el.Entry()
	st := b.status(&e)
	st.Last = res
	return st, nil
}

func (b *Board) storeError(err error, key string) error {
	if stderrors.Is(err, db.ErrEntryNotFound) {
		b.sched.Dispose(key)
		return errors.NotFound("entry %s not found", key)
	}
	return errors.WrapInternal(err, "failed to update entry %s", key)
}
