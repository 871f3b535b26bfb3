// Package element provides Element implementations: an in-memory element
// for library callers and tests, and a stored element backed by an entry in
// the database.
package element

import (
	"sync"
)

// Attribute names, matching the scheduler's.
const (
	attrDatetime = "datetime"
	attrTitle    = "title"
)

// Memory is an element held in memory. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	key    string
	isTime bool
	attrs  map[string]string
	text   string
	writes int
}

// NewMemory creates a plain element whose timestamp is read from its title.
func NewMemory(key, title, text string) *Memory {
	m := &Memory{key: key, attrs: map[string]string{}, text: text}
	if title != "" {
		m.attrs[attrTitle] = title
	}
	return m
}

// NewTime creates a time element carrying datetime.
func NewTime(key, datetime, text string) *Memory {
	return &Memory{
		key:    key,
		isTime: true,
		attrs:  map[string]string{attrDatetime: datetime},
		text:   text,
	}
}

// Key implements scheduler.Element.
func (m *Memory) Key() string {
	return m.key
}

// IsTime implements scheduler.Element.
func (m *Memory) IsTime() bool {
	return m.isTime
}

// Attr implements scheduler.Element.
func (m *Memory) Attr(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attrs[name]
}

// SetAttr implements scheduler.Element.
func (m *Memory) SetAttr(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs[name] = value
	return nil
}

// Text implements scheduler.Element.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// SetText implements scheduler.Element.
func (m *Memory) SetText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes++
	return nil
}

// Writes returns how many times SetText has been called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
