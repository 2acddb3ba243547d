// Package dates holds the calendar-date primitives shared by the engine and
// its hosts. All comparisons work on local calendar fields; no timezone
// conversion happens here.
package dates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Key is the canonical YYYY-MM-DD form of a calendar date. Keys compare
// lexicographically in chronological order, so they are used for equality,
// storage and exchange instead of time.Time values.
type Key string

// Layout is the time layout matching Key.
const Layout = "2006-01-02"

// Format returns the Key for the calendar fields of t.
func Format(t time.Time) Key {
	return FromFields(t.Year(), t.Month(), t.Day())
}

// FromFields builds a Key from a year, month and day without validating them.
func FromFields(year int, month time.Month, day int) Key {
	return Key(fmt.Sprintf("%04d-%02d-%02d", year, int(month), day))
}

// Parse parses a strict YYYY-MM-DD string into a midnight time.Time in
// time.Local. Dates that do not exist in the calendar (2023-02-29) are
// rejected.
func Parse(s string) (time.Time, error) {
	return ParseInLocation(s, time.Local)
}

// ParseInLocation is Parse with an explicit location.
func ParseInLocation(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(Layout) || s[4] != '-' || s[7] != '-' {
		return time.Time{}, fmt.Errorf("dates: %q is not YYYY-MM-DD", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: bad year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: bad month in %q: %w", s, err)
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: bad day in %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("dates: month out of range in %q", s)
	}
	if day < 1 || day > DaysIn(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("dates: day out of range in %q", s)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

// ParseKey validates s and returns it as a Key. Malformed input yields ("", false).
func ParseKey(s string) (Key, bool) {
	t, err := Parse(s)
	if err != nil {
		return "", false
	}
	return Format(t), true
}

// Time returns k as a midnight time.Time in loc.
func (k Key) Time(loc *time.Location) (time.Time, bool) {
	t, err := ParseInLocation(string(k), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsZero reports whether k is unset.
func (k Key) IsZero() bool { return k == "" }

func (k Key) String() string { return string(k) }

// Compare orders two keys. Unset keys sort first.
func Compare(a, b Key) int {
	return strings.Compare(string(a), string(b))
}

// Between reports whether k lies strictly between a and b, in either order.
// Equal bounds produce an empty interval.
func Between(k, a, b Key) bool {
	if a.IsZero() || b.IsZero() || k.IsZero() {
		return false
	}
	if a > b {
		a, b = b, a
	}
	return k > a && k < b
}

// IsSameDay reports whether a and b fall on the same local calendar day.
func IsSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseRange parses "YYYY-MM-DD:YYYY-MM-DD" and returns every key in the
// inclusive range. Inverted bounds are swapped.
func ParseRange(s string) ([]Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("dates: invalid range %q, expected '<from>:<to>'", s)
	}
	from, err := Parse(parts[0])
	if err != nil {
		return nil, fmt.Errorf("dates: invalid range start: %w", err)
	}
	to, err := Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("dates: invalid range end: %w", err)
	}
	if to.Before(from) {
		from, to = to, from
	}
	var out []Key
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, Format(d))
	}
	return out, nil
}

// Set is a set of date keys.
type Set map[Key]struct{}

// NewSet returns a set holding keys.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k. Unset keys are ignored.
func (s Set) Add(k Key) {
	if k.IsZero() {
		return
	}
	s[k] = struct{}{}
}

// Has reports membership. A nil set is empty.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Merge returns a new set holding the union of s and others.
func (s Set) Merge(others ...Set) Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, o := range others {
		for k := range o {
			out[k] = struct{}{}
		}
	}
	return out
}

// Keys returns the members in ascending order.
func (s Set) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a copy of s.
func (s Set) Clone() Set { return s.Merge() }
