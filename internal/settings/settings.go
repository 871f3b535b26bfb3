// Package settings holds the process-wide rendering and refresh defaults and
// the per-call overrides merged on top of them.
//
// Changing the defaults affects renders that happen afterwards. Text that
// was already rendered is left alone.
package settings

import (
	"sync"
	"time"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/locale"
)

// DefaultRefreshInterval is how often attached elements are re-rendered.
const DefaultRefreshInterval = 60 * time.Second

// Settings controls rendering and refreshing.
type Settings struct {
	// RefreshInterval between re-renders. Zero disables auto refresh.
	RefreshInterval time.Duration

	// AllowFuture renders negative distances with "from now" wording.
	// When false every distance is treated as past.
	AllowFuture bool

	// Cutoff stops re-rendering once the elapsed time reaches it.
	// Zero means no cutoff.
	Cutoff time.Duration

	// LocaleTitle sets the element title to the instant's local date string.
	LocaleTitle bool

	// Strings is the locale table. Never modify a table after handing it over.
	Strings *locale.Strings
}

// Builtin returns the settings a fresh process starts with.
func Builtin() Settings {
	return Settings{
		RefreshInterval: DefaultRefreshInterval,
		Strings:         locale.English(),
	}
}

// Validate checks that durations are non-negative and a table is present.
func (s Settings) Validate() error {
	if s.RefreshInterval < 0 {
		return errors.InvalidArgs("refresh interval cannot be negative: %s", s.RefreshInterval)
	}
	if s.Cutoff < 0 {
		return errors.InvalidArgs("cutoff cannot be negative: %s", s.Cutoff)
	}
	if s.Strings == nil {
		return errors.InvalidArgs("locale strings are required")
	}
	return nil
}

// Options overrides individual settings for one call. Nil fields keep the
// default.
type Options struct {
	RefreshInterval *time.Duration
	AllowFuture     *bool
	Cutoff          *time.Duration
	LocaleTitle     *bool
	Strings         *locale.Strings
}

// Merge returns s with every non-nil option applied.
func (s Settings) Merge(o Options) Settings {
	if o.RefreshInterval != nil {
		s.RefreshInterval = *o.RefreshInterval
	}
	if o.AllowFuture != nil {
		s.AllowFuture = *o.AllowFuture
	}
	if o.Cutoff != nil {
		s.Cutoff = *o.Cutoff
	}
	if o.LocaleTitle != nil {
		s.LocaleTitle = *o.LocaleTitle
	}
	if o.Strings != nil {
		s.Strings = o.Strings
	}
	return s
}

var (
	mu       sync.RWMutex
	defaults = Builtin()
)

// Defaults returns the current process-wide defaults.
func Defaults() Settings {
	mu.RLock()
	defer mu.RUnlock()
	return defaults
}

// SetDefaults replaces the process-wide defaults. Last writer wins.
func SetDefaults(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	mu.Lock()
	defaults = s
	mu.Unlock()
	return nil
}

// ResetDefaults restores Builtin.
func ResetDefaults() {
	mu.Lock()
	defaults = Builtin()
	mu.Unlock()
}

// Resolve merges o onto the current defaults.
func Resolve(o Options) Settings {
	return Defaults().Merge(o)
}

// Bool returns a pointer for Options fields.
func Bool(v bool) *bool {
	return &v
}

// Duration returns a pointer for Options fields.
func Duration(d time.Duration) *time.Duration {
	return &d
}
