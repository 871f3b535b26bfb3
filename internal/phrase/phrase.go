// Package phrase renders a signed distance as relative-time words using a
// locale strings table.
package phrase

import (
	"math"
	"strings"
	"time"

	"github.com/spetersoncode/timeago/internal/distance"
	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/settings"
)

// Render turns a distance in milliseconds into a phrase. Positive distances
// lie in the past, negative ones in the future.
func Render(distanceMillis int64, s settings.Settings) (string, error) {
	return RenderFloat(float64(distanceMillis), s)
}

// RenderFloat is Render for fractional or untrusted distances. NaN and
// infinite distances return an InvalidDistance error.
func RenderFloat(distanceMillis float64, s settings.Settings) (string, error) {
	l := s.Strings
	if l == nil {
		return "", errors.InvalidArgs("locale strings are required")
	}

	prefix, suffix := l.PrefixAgo, l.SuffixAgo
	if s.AllowFuture && distanceMillis < 0 {
		prefix, suffix = l.PrefixFromNow, l.SuffixFromNow
	}

	seconds := math.Abs(distanceMillis) / 1000
	res, err := distance.Classify(seconds)
	if err != nil {
		return "", errors.Wrap(err, errors.KindInvalidDistance, "cannot render distance %v ms", distanceMillis)
	}

	words := Substitute(l.Template(res.Bucket).Resolve(res.Numeral, int64(distanceMillis)), l.Numeral(res.Numeral))
	return join(l.Separator(), prefix, words, suffix), nil
}

// InWords renders an elapsed duration; negative durations lie in the future.
func InWords(d time.Duration, s settings.Settings) (string, error) {
	return Render(d.Milliseconds(), s)
}

// Between renders instant relative to now.
func Between(instant, now time.Time, s settings.Settings) (string, error) {
	return Render(now.Sub(instant).Milliseconds(), s)
}

// Substitute replaces the first placeholder in template with numeral. The
// placeholder matches case-insensitively, so "%D" works too.
func Substitute(template, numeral string) string {
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '%' && (template[i+1] == 'd' || template[i+1] == 'D') {
			return template[:i] + numeral + template[i+2:]
		}
	}
	return template
}

// join glues the parts together, leaving out an absent prefix or suffix so
// no stray separator is left at either end.
func join(sep string, prefix, words, suffix string) string {
	parts := make([]string, 0, 3)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, words)
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}
