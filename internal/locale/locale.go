// Package locale holds the strings tables used to turn a bucket and numeral
// into words, plus the registry of built-in locales.
package locale

import (
	"strconv"

	"github.com/spetersoncode/timeago/internal/distance"
)

// Placeholder is the numeral marker inside a template. Matching ignores case.
const Placeholder = "%d"

// DefaultWordSeparator joins prefix, words and suffix when no separator is set.
const DefaultWordSeparator = " "

// TemplateFunc builds a phrase from the numeral and the signed distance in
// milliseconds. The result may still contain a placeholder.
type TemplateFunc func(numeral int, distanceMillis int64) string

// Template is either a literal string or a function.
type Template struct {
	Text string
	Func TemplateFunc
}

// Literal returns a fixed template.
func Literal(text string) Template {
	return Template{Text: text}
}

// Dynamic returns a template computed per render.
func Dynamic(fn TemplateFunc) Template {
	return Template{Func: fn}
}

// Resolve returns the template text for a numeral and distance.
func (t Template) Resolve(numeral int, distanceMillis int64) string {
	if t.Func != nil {
		return t.Func(numeral, distanceMillis)
	}
	return t.Text
}

// Strings is a locale strings table. Treat a table as immutable once it is
// handed to a renderer; use Clone before modifying a shared one.
type Strings struct {
	PrefixAgo     string
	PrefixFromNow string
	SuffixAgo     string
	SuffixFromNow string

	Templates map[distance.Bucket]Template

	// WordSeparator joins prefix, words and suffix. Nil means
	// DefaultWordSeparator; a pointer to "" means no separator.
	WordSeparator *string

	// Numbers replaces numerals by index, e.g. Numbers[2] = "two".
	// Empty entries fall through.
	Numbers []string

	// NumeralFunc renders numerals not covered by Numbers. An empty result
	// falls through to the decimal numeral.
	NumeralFunc func(n int) string
}

// English returns the default English table.
func English() *Strings {
	return &Strings{
		SuffixAgo:     "ago",
		SuffixFromNow: "from now",
		Templates: map[distance.Bucket]Template{
			distance.Seconds: Literal("less than a minute"),
			distance.Minute:  Literal("about a minute"),
			distance.Minutes: Literal("%d minutes"),
			distance.Hour:    Literal("about an hour"),
			distance.Hours:   Literal("about %d hours"),
			distance.Day:     Literal("a day"),
			distance.Days:    Literal("%d days"),
			distance.Month:   Literal("about a month"),
			distance.Months:  Literal("%d months"),
			distance.Year:    Literal("about a year"),
			distance.Years:   Literal("%d years"),
		},
	}
}

// Template returns the template for a bucket. Missing buckets yield an
// empty literal.
func (s *Strings) Template(b distance.Bucket) Template {
	return s.Templates[b]
}

// Separator returns the effective word separator.
func (s *Strings) Separator() string {
	if s.WordSeparator == nil {
		return DefaultWordSeparator
	}
	return *s.WordSeparator
}

// Numeral renders n using Numbers, then NumeralFunc, then decimal digits.
func (s *Strings) Numeral(n int) string {
	if n >= 0 && n < len(s.Numbers) && s.Numbers[n] != "" {
		return s.Numbers[n]
	}
	if s.NumeralFunc != nil {
		if v := s.NumeralFunc(n); v != "" {
			return v
		}
	}
	return strconv.Itoa(n)
}

// Clone returns a copy that can be modified without touching s.
func (s *Strings) Clone() *Strings {
	c := *s
	c.Templates = make(map[distance.Bucket]Template, len(s.Templates))
	for b, t := range s.Templates {
		c.Templates[b] = t
	}
	if s.WordSeparator != nil {
		sep := *s.WordSeparator
		c.WordSeparator = &sep
	}
	if s.Numbers != nil {
		c.Numbers = append([]string(nil), s.Numbers...)
	}
	return &c
}

// Separator returns a pointer suitable for Strings.WordSeparator.
func Separator(sep string) *string {
	return &sep
}
