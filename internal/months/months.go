// Package months models the calendar panes currently on screen. A List holds
// one descriptor in single-pane layouts and two adjacent descriptors in
// dual-pane layouts. Every operation returns a new List; callers never share
// backing arrays.
package months

import (
	"fmt"
	"strings"
	"time"
)

const (
	minYear = 1
	maxYear = 9999
)

// Descriptor identifies one displayed pane. Month is 0-based (0 = January).
type Descriptor struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// FromTime returns the descriptor of the month containing t.
func FromTime(t time.Time) Descriptor {
	return Descriptor{Month: int(t.Month()) - 1, Year: t.Year()}
}

// AddMonth adds delta months to d, carrying into the year in either direction.
func AddMonth(d Descriptor, delta int) Descriptor {
	total := d.Year*12 + d.Month + delta
	year := floorDiv(total, 12)
	return Descriptor{Month: total - year*12, Year: year}
}

// Add is AddMonth as a method.
func (d Descriptor) Add(delta int) Descriptor { return AddMonth(d, delta) }

// Normalize folds an out-of-range month into the year (month 12 becomes
// January of the next year, month -1 December of the previous one) and
// clamps the year to 1..9999 so the result always formats as a 4-digit key.
func (d Descriptor) Normalize() Descriptor {
	n := AddMonth(Descriptor{Year: d.Year}, d.Month)
	switch {
	case n.Year < minYear:
		return Descriptor{Month: 0, Year: minYear}
	case n.Year > maxYear:
		return Descriptor{Month: 11, Year: maxYear}
	}
	return n
}

// Before reports whether d is earlier than o.
func (d Descriptor) Before(o Descriptor) bool {
	return d.index() < o.index()
}

// Diff returns the number of months from d to o.
func (d Descriptor) Diff(o Descriptor) int {
	return o.index() - d.index()
}

func (d Descriptor) index() int { return d.Year*12 + d.Month }

// First returns midnight on the first day of the month in loc.
func (d Descriptor) First(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(d.Month+1), 1, 0, 0, 0, 0, loc)
}

// Days returns the number of days in the month.
func (d Descriptor) Days() int {
	return time.Date(d.Year, time.Month(d.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls inside the month.
func (d Descriptor) Contains(t time.Time) bool {
	return t.Year() == d.Year && int(t.Month())-1 == d.Month
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month+1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Side names which pane an edit or navigation applies to.
type Side int

const (
	// SideSingle addresses the only pane of a single-pane layout.
	SideSingle Side = iota
	// SideLeft addresses the first pane of a dual-pane layout.
	SideLeft
	// SideRight addresses the second pane of a dual-pane layout.
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "single"
	}
}

// ParseSide parses "single", "left" or "right". Unknown values fall back to
// SideSingle and report false.
func ParseSide(v string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "single", "":
		return SideSingle, true
	case "left":
		return SideLeft, true
	case "right":
		return SideRight, true
	}
	return SideSingle, false
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	v, ok := ParseSide(string(b))
	if !ok {
		return fmt.Errorf("months: unknown side %q", string(b))
	}
	*s = v
	return nil
}
