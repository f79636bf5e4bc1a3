// Package schedule implements minute-granular time-of-day intervals used by
// the availability index and the pricing calculator.  Intervals are half-open
// [start, end): a booking ending at 11:00 does not conflict with one starting
// at 11:00.  All values are minutes since midnight, so a full day spans
// [0, 1440).
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a civil day.
const MinutesPerDay = 24 * 60

// ErrInvalidInterval is returned when an interval is empty, inverted or falls
// outside the day.  Callers translate it into the InvalidInterval rejection.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a half-open [Start, End) range of minutes since midnight.
type Interval struct {
	Start int // inclusive, minutes since midnight
	End   int // exclusive, minutes since midnight
}

// NewInterval validates and returns an interval.  Start must be strictly
// before End and both bounds must lie within a single day.
func NewInterval(start, end int) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Validate reports ErrInvalidInterval for empty, inverted or out-of-day ranges.
func (iv Interval) Validate() error {
	if iv.Start < 0 || iv.End > MinutesPerDay || iv.Start >= iv.End {
		return fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval, FormatClock(iv.Start), FormatClock(iv.End))
	}
	return nil
}

// Minutes returns the duration of the interval in minutes.
func (iv Interval) Minutes() int { return iv.End - iv.Start }

// Overlaps reports whether two half-open intervals share any minute.  Abutting
// intervals (iv.End == other.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether the minute m falls inside the interval.
func (iv Interval) Contains(m int) bool { return m >= iv.Start && m < iv.End }

// Intersect returns the overlapping portion of two intervals and true when
// they overlap.  The zero Interval and false are returned otherwise.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	start := iv.Start
	if other.Start > start {
		start = other.Start
	}
	end := iv.End
	if other.End < end {
		end = other.End
	}
	if start >= end {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// String renders the interval as "HH:MM-HH:MM".
func (iv Interval) String() string {
	return FormatClock(iv.Start) + "-" + FormatClock(iv.End)
}

// ParseClock converts a "HH:MM" string into minutes since midnight.  The
// format is strict: hours and minutes are always two digits, so "9:30" is
// rejected.  "24:00" is accepted as the exclusive end-of-day bound.
func ParseClock(s string) (int, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	if len(s) != 5 {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidInterval, s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidInterval, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseInterval builds an interval from two "HH:MM" strings.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// ParseRange builds an interval from a "HH:MM-HH:MM" string.
func ParseRange(s string) (Interval, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return Interval{}, fmt.Errorf("%w: %q is not HH:MM-HH:MM", ErrInvalidInterval, s)
	}
	return ParseInterval(strings.TrimSpace(start), strings.TrimSpace(end))
}

// ParseRanges parses a comma-separated list of "HH:MM-HH:MM" ranges.
func ParseRanges(s string) ([]Interval, error) {
	parts := strings.Split(s, ",")
	ivs := make([]Interval, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		iv, err := ParseRange(p)
		if err != nil {
			return nil, err
		}
		ivs = append(ivs, iv)
	}
	return ivs, nil
}

// ParseDate validates a YYYY-MM-DD date string and returns it normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	return t.Format(time.DateOnly), nil
}

// Merge sorts the given intervals by start and coalesces overlapping or
// abutting ones into a minimal busy list.  The input slice is not modified.
func Merge(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	merged := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, iv := range sorted[1:] {
		if iv.Start <= cur.End {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = iv
	}
	return append(merged, cur)
}

// Complement returns the free sub-intervals of window not covered by busy.
// The busy list may be unsorted and overlapping; portions of busy intervals
// outside the window are ignored.  The result is ordered and non-overlapping.
func Complement(window Interval, busy []Interval) []Interval {
	free := make([]Interval, 0, len(busy)+1)
	cursor := window.Start
	for _, iv := range Merge(busy) {
		if iv.End <= window.Start || iv.Start >= window.End {
			continue
		}
		if iv.Start > cursor {
			free = append(free, Interval{Start: cursor, End: iv.Start})
		}
		if iv.End > cursor {
			cursor = iv.End
		}
	}
	if cursor < window.End {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}
