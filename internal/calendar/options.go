package calendar

import (
	"fmt"
	"strings"
	"time"

	"rangecal/internal/dates"
)

// DefaultDualPaneThreshold is the container width, in pixels, at or above
// which an "auto" range calendar shows two panes.
const DefaultDualPaneThreshold = 640

// Mode selects between single-date and range selection.
type Mode int

const (
	ModeSingle Mode = iota
	ModeRange
)

func (m Mode) String() string {
	if m == ModeRange {
		return "range"
	}
	return "single"
}

// ParseMode parses "single" or "range".
func ParseMode(v string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "single", "":
		return ModeSingle, nil
	case "range":
		return ModeRange, nil
	}
	return ModeSingle, fmt.Errorf("calendar: unknown mode %q", v)
}

// PaneCount is the configured number of range-mode panes.
type PaneCount int

const (
	// PanesAuto derives the pane count from the measured container width.
	PanesAuto PaneCount = 0
	PanesOne  PaneCount = 1
	PanesTwo  PaneCount = 2
)

func (p PaneCount) String() string {
	switch p {
	case PanesOne:
		return "1"
	case PanesTwo:
		return "2"
	default:
		return "auto"
	}
}

// ParsePaneCount parses "1", "2" or "auto". Empty means auto, matching the
// zero value.
func ParsePaneCount(v string) (PaneCount, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1":
		return PanesOne, nil
	case "2":
		return PanesTwo, nil
	case "auto", "":
		return PanesAuto, nil
	}
	return PanesAuto, fmt.Errorf("calendar: unknown range calendar count %q", v)
}

// ParseFirstDayOfWeek parses "sunday" or "monday".
func ParseFirstDayOfWeek(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sunday", "":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("calendar: unknown first day of week %q", v)
}

// Options configures an Engine. The zero value is a single-date calendar
// starting on Sunday with no constraints; a zero RangeCalendarCount is
// PanesAuto.
type Options struct {
	Mode               Mode
	RangeCalendarCount PaneCount
	FirstDayOfWeek     time.Weekday

	Constraints dates.Constraints

	// Locale is passed through to renderers untouched.
	Locale string

	// DualPaneThreshold overrides DefaultDualPaneThreshold when positive.
	DualPaneThreshold int

	// Initial selection. Malformed values are treated as unset.
	Value     string
	StartDate string
	EndDate   string

	// Location is used to build times for keys. Defaults to time.Local.
	Location *time.Location
	// Now supplies the current time. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) normalized() Options {
	if o.Mode != ModeRange {
		o.Mode = ModeSingle
	}
	switch o.RangeCalendarCount {
	case PanesAuto, PanesOne, PanesTwo:
	default:
		o.RangeCalendarCount = PanesAuto
	}
	if o.FirstDayOfWeek != time.Monday {
		o.FirstDayOfWeek = time.Sunday
	}
	if o.DualPaneThreshold <= 0 {
		o.DualPaneThreshold = DefaultDualPaneThreshold
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Constraints = normalizeConstraints(o.Constraints)
	return o
}

// normalizeConstraints drops unparsable bounds so that a typo in
// configuration never blocks selection of every date.
func normalizeConstraints(c dates.Constraints) dates.Constraints {
	if k, ok := dates.ParseKey(string(c.Min)); ok {
		c.Min = k
	} else {
		c.Min = ""
	}
	if k, ok := dates.ParseKey(string(c.Max)); ok {
		c.Max = k
	} else {
		c.Max = ""
	}
	c.Excluded = c.Excluded.Clone()
	return c
}
