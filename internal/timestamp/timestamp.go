// Package timestamp turns the timestamp forms accepted by the renderer into
// instants: time values, epoch milliseconds and ISO-8601-like strings.
package timestamp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spetersoncode/timeago/internal/errors"
)

// Canonical is the layout produced by Format and preferred by Parse.
const Canonical = "2006-01-02T15:04:05.000Z07:00"

// loose matches ISO-8601 variants without strict separators: "/" or "-" in
// the date, "T" or a space before the time, optional seconds and fraction,
// and a zone written as Z, UTC, GMT, +hh, +hhmm or +hh:mm.
var loose = regexp.MustCompile(`(?i)^(\d{4})[-/](\d{1,2})[-/](\d{1,2})` +
	`(?:[T ]+(\d{1,2}):(\d{2})(?::(\d{2})(?:[.,](\d+))?)?)?` +
	`\s*(Z|UTC|GMT|[+-]\d{2}(?::?\d{2})?)?$`)

var integer = regexp.MustCompile(`^-?\d+$`)

// Parse parses s. Strings without a zone are read as UTC.
func Parse(s string) (time.Time, error) {
	return ParseIn(s, time.UTC)
}

// ParseIn parses s, reading zone-less strings in loc.
func ParseIn(s string, loc *time.Location) (time.Time, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return time.Time{}, errors.ParseFailure(s, fmt.Errorf("empty timestamp"))
	}

	if t, err := time.Parse(time.RFC3339Nano, input); err == nil {
		return t, nil
	}

	m := loose.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, errors.ParseFailure(s, fmt.Errorf("unrecognized format"))
	}

	fields := make([]int, 6)
	for i, raw := range m[1:7] {
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return time.Time{}, errors.ParseFailure(s, err)
		}
		fields[i] = v
	}
	year, month, day, hour, minute, second := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	if err := checkRange(year, month, day, hour, minute, second); err != nil {
		return time.Time{}, errors.ParseFailure(s, err)
	}

	nsec := 0
	if frac := m[7]; frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		v, _ := strconv.Atoi(frac)
		nsec = v * int(math.Pow10(9-len(frac)))
	}

	zone, err := parseZone(m[8], loc)
	if err != nil {
		return time.Time{}, errors.ParseFailure(s, err)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, nsec, zone), nil
}

func checkRange(year, month, day, hour, minute, second int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range", month)
	}
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > last {
		return fmt.Errorf("day %d out of range", day)
	}
	if hour > 23 {
		return fmt.Errorf("hour %d out of range", hour)
	}
	if minute > 59 {
		return fmt.Errorf("minute %d out of range", minute)
	}
	if second > 59 {
		return fmt.Errorf("second %d out of range", second)
	}
	return nil
}

// parseZone reads Z, UTC, GMT or a numeric offset. An hour-only offset such
// as +09 means +09:00.
func parseZone(z string, loc *time.Location) (*time.Location, error) {
	switch strings.ToUpper(z) {
	case "":
		if loc == nil {
			return time.UTC, nil
		}
		return loc, nil
	case "Z", "UTC", "GMT":
		return time.UTC, nil
	}

	sign := 1
	if z[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(z[1:], ":", "")
	if len(digits) == 2 {
		digits += "00"
	}
	hh, _ := strconv.Atoi(digits[:2])
	mm, _ := strconv.Atoi(digits[2:])
	if hh > 23 || mm > 59 {
		return nil, fmt.Errorf("zone offset %s out of range", z)
	}
	return time.FixedZone("", sign*(hh*3600+mm*60)), nil
}

// FromMillis converts epoch milliseconds to a UTC instant.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ParseInput accepts what a user types: an integer is read as epoch
// milliseconds, anything else goes through Parse.
func ParseInput(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if integer.MatchString(trimmed) {
		ms, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return time.Time{}, errors.ParseFailure(s, err)
		}
		return FromMillis(ms), nil
	}
	return Parse(trimmed)
}

// FromValue converts any supported form into an instant.
func FromValue(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, errors.ParseFailure("<nil>", fmt.Errorf("nil time"))
		}
		return *t, nil
	case int:
		return FromMillis(int64(t)), nil
	case int64:
		return FromMillis(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, errors.ParseFailure(fmt.Sprint(t), fmt.Errorf("not a finite number"))
		}
		return FromMillis(int64(t)), nil
	case string:
		return ParseInput(t)
	default:
		return time.Time{}, errors.ParseFailure(fmt.Sprint(v), fmt.Errorf("unsupported type %T", v))
	}
}

// Format renders t in the canonical layout, in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Canonical)
}
