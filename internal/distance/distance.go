// Package distance classifies an elapsed number of seconds into a magnitude
// bucket and the numeral that goes with it.
//
// Months are 30 days and years are 365 days. The thresholds are fixed
// averages, not calendar arithmetic.
package distance

import (
	"math"

	"github.com/spetersoncode/timeago/internal/errors"
)

// Bucket is a named class of elapsed-time magnitude. Buckets are ordered from
// smallest to largest, so comparisons between buckets are meaningful.
type Bucket int

const (
	Seconds Bucket = iota
	Minute
	Minutes
	Hour
	Hours
	Day
	Days
	Month
	Months
	Year
	Years
)

var bucketNames = [...]string{
	Seconds: "seconds",
	Minute:  "minute",
	Minutes: "minutes",
	Hour:    "hour",
	Hours:   "hours",
	Day:     "day",
	Days:    "days",
	Month:   "month",
	Months:  "months",
	Year:    "year",
	Years:   "years",
}

// String returns the bucket's template key, e.g. "minutes".
func (b Bucket) String() string {
	if b < Seconds || b > Years {
		return "unknown"
	}
	return bucketNames[b]
}

// MarshalText encodes the bucket by name.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// AllBuckets returns every bucket in ascending order.
func AllBuckets() []Bucket {
	return []Bucket{Seconds, Minute, Minutes, Hour, Hours, Day, Days, Month, Months, Year, Years}
}

// ParseBucket returns the bucket for a template key.
func ParseBucket(name string) (Bucket, bool) {
	for b, n := range bucketNames {
		if n == name {
			return Bucket(b), true
		}
	}
	return 0, false
}

// Threshold constants in seconds.
const (
	MinuteThreshold  = 45.0       // 45s
	MinutesThreshold = 90.0       // 90s
	HourThreshold    = 2700.0     // 45min
	HoursThreshold   = 5400.0     // 90min
	DayThreshold     = 86400.0    // 1 day
	DaysThreshold    = 151200.0   // 1.75 days
	MonthThreshold   = 2592000.0  // 30 days
	MonthsThreshold  = 3888000.0  // 45 days
	YearThreshold    = 31536000.0 // 365 days
	YearsThreshold   = 47304000.0 // 547.5 days
)

const (
	secondsPerMinute = 60.0
	secondsPerHour   = 3600.0
	secondsPerDay    = 86400.0
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay
)

// Rule maps every distance below Below to Bucket. Divisor turns the distance
// into the bucket's numeral; a zero Divisor means the numeral is always 1.
type Rule struct {
	Below   float64
	Bucket  Bucket
	Divisor float64
}

// rules is evaluated top to bottom; the first rule whose Below is greater
// than the distance wins.
var rules = []Rule{
	{Below: MinuteThreshold, Bucket: Seconds, Divisor: 1},
	{Below: MinutesThreshold, Bucket: Minute},
	{Below: HourThreshold, Bucket: Minutes, Divisor: secondsPerMinute},
	{Below: HoursThreshold, Bucket: Hour},
	{Below: DayThreshold, Bucket: Hours, Divisor: secondsPerHour},
	{Below: DaysThreshold, Bucket: Day},
	{Below: MonthThreshold, Bucket: Days, Divisor: secondsPerDay},
	{Below: MonthsThreshold, Bucket: Month},
	{Below: YearThreshold, Bucket: Months, Divisor: secondsPerMonth},
	{Below: YearsThreshold, Bucket: Year},
	{Below: math.Inf(1), Bucket: Years, Divisor: secondsPerYear},
}

// Rules returns a copy of the classification table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Result is the outcome of classifying a distance.
type Result struct {
	Bucket  Bucket `json:"bucket"`
	Numeral int    `json:"numeral"`
}

// Classify maps a non-negative number of seconds to its bucket and numeral.
// Distances under one second, zero included, fall in Seconds. NaN, infinite
// and negative inputs return an InvalidDistance error, as do distances whose
// numeral does not fit in an int.
func Classify(seconds float64) (Result, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return Result{}, errors.InvalidDistance("not a valid distance: %v seconds", seconds)
	}

	for _, r := range rules {
		if seconds >= r.Below {
			continue
		}
		numeral := 1
		if r.Divisor != 0 {
			v := seconds / r.Divisor
			if v >= math.MaxInt {
				return Result{}, errors.InvalidDistance("distance too large: %v seconds", seconds)
			}
			numeral = Round(v)
		}
		return Result{Bucket: r.Bucket, Numeral: numeral}, nil
	}

	// unreachable: the last rule is unbounded
	return Result{}, errors.InvalidDistance("not a valid distance: %v seconds", seconds)
}

// Round rounds half away from zero, so 2.5 becomes 3. Classification inputs
// are never negative, which makes this identical to rounding ties upward.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}
