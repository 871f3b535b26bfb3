package locale

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/spetersoncode/timeago/internal/distance"
	"github.com/spetersoncode/timeago/internal/errors"
)

// Numeral styles accepted in locale files.
const (
	NumeralStylePlain   = "plain"
	NumeralStyleGrouped = "grouped" // 1,234
)

// File is the TOML representation of a strings table. Every field is
// optional; absent fields keep the value of the table the file is applied to.
type File struct {
	// Base names the built-in locale a user file is layered on. Default "en".
	Base string `toml:"base"`

	PrefixAgo     *string `toml:"prefix_ago"`
	PrefixFromNow *string `toml:"prefix_from_now"`
	SuffixAgo     *string `toml:"suffix_ago"`
	SuffixFromNow *string `toml:"suffix_from_now"`
	WordSeparator *string `toml:"word_separator"`

	Numbers      []string `toml:"numbers"`
	NumeralStyle string   `toml:"numeral_style"`

	Templates map[string]string `toml:"templates"`
}

// IsZero reports whether the file sets nothing.
func (f File) IsZero() bool {
	return f.Base == "" && f.PrefixAgo == nil && f.PrefixFromNow == nil &&
		f.SuffixAgo == nil && f.SuffixFromNow == nil && f.WordSeparator == nil &&
		f.Numbers == nil && f.NumeralStyle == "" && len(f.Templates) == 0
}

// Apply returns a copy of base with the file's fields layered on top.
func (f File) Apply(base *Strings) (*Strings, error) {
	s := base.Clone()

	if f.PrefixAgo != nil {
		s.PrefixAgo = *f.PrefixAgo
	}
	if f.PrefixFromNow != nil {
		s.PrefixFromNow = *f.PrefixFromNow
	}
	if f.SuffixAgo != nil {
		s.SuffixAgo = *f.SuffixAgo
	}
	if f.SuffixFromNow != nil {
		s.SuffixFromNow = *f.SuffixFromNow
	}
	if f.WordSeparator != nil {
		s.WordSeparator = Separator(*f.WordSeparator)
	}
	if f.Numbers != nil {
		s.Numbers = append([]string(nil), f.Numbers...)
	}

	switch f.NumeralStyle {
	case "":
	case NumeralStylePlain:
		s.NumeralFunc = nil
	case NumeralStyleGrouped:
		s.NumeralFunc = func(n int) string { return humanize.Comma(int64(n)) }
	default:
		return nil, errors.InvalidArgs("unknown numeral style %q", f.NumeralStyle).
			WithSuggestion("Use \"plain\" or \"grouped\".")
	}

	for name, text := range f.Templates {
		b, ok := distance.ParseBucket(name)
		if !ok {
			return nil, errors.InvalidArgs("unknown template %q", name)
		}
		s.Templates[b] = Literal(text)
	}

	return s, nil
}

// DecodeFile reads a locale file from an fs.FS.
func DecodeFile(fsys fs.FS, path string) (File, error) {
	var f File
	if _, err := toml.DecodeFS(fsys, path, &f); err != nil {
		return File{}, fmt.Errorf("failed to decode locale %s: %w", path, err)
	}
	return f, nil
}

// LoadFile reads a user locale file from disk and layers it on its base
// locale (English unless the file names another).
func LoadFile(path string) (*Strings, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("locale file %s does not exist", path)
		}
		return nil, errors.Wrap(err, errors.KindInvalidArgs, "invalid locale file %s", path)
	}

	base := f.Base
	if base == "" {
		base = "en"
	}
	baseStrings, err := Lookup(base)
	if err != nil {
		return nil, err
	}
	return f.Apply(baseStrings)
}
