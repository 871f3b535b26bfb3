package scheduler

import "time"

// Attribute names read from elements.
const (
	AttrDatetime = "datetime"
	AttrTitle    = "title"
)

// LocaleTitleLayout formats the reference instant when LocaleTitle is set.
const LocaleTitleLayout = time.RFC1123

// Element is the host object a phrase is rendered into. Setters may fail,
// e.g. when the element is backed by storage.
//
// Element methods are called with the handle's lock held and must not call
// back into the scheduler, with the exception of Handle.Dispose.
type Element interface {
	// Key identifies the element within one scheduler.
	Key() string

	// IsTime reports whether the element carries a datetime attribute.
	// Time elements read their timestamp from it, others from the title.
	IsTime() bool

	Attr(name string) string
	SetAttr(name, value string) error

	Text() string
	SetText(text string) error
}

// RenderedText is implemented by elements whose text only ever holds an
// earlier rendered phrase. Their text is never moved into the title.
type RenderedText interface {
	TextIsRendered() bool
}

// SourceTimestamp returns the raw timestamp string an element carries.
func SourceTimestamp(el Element) string {
	if el.IsTime() {
		return el.Attr(AttrDatetime)
	}
	return el.Attr(AttrTitle)
}
