// Package calendar implements the date-picker engine: the displayed-month
// model, single and range selection, navigation, month/year pickers,
// keyboard focus and the responsive one-or-two pane decision.
//
// An Engine is driven by one logical thread of events. Each method runs a
// transition to completion and notifies listeners before returning. Hosts
// that receive events concurrently (an HTTP server, for instance) must
// serialize calls to a given Engine themselves.
package calendar

import (
	"time"

	"rangecal/internal/dates"
	"rangecal/internal/months"
)

// Phase is the selection state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSingleSelected
	PhaseStartSelected
	PhaseRangeComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseSingleSelected:
		return "single-selected"
	case PhaseStartSelected:
		return "start-selected"
	case PhaseRangeComplete:
		return "range-complete"
	default:
		return "idle"
	}
}

// Engine owns the selection and navigation state of one calendar instance.
type Engine struct {
	opts Options

	displayed months.List
	autoDual  bool

	selected dates.Key
	start    dates.Key
	end      dates.Key
	hover    dates.Key
	focus    dates.Key

	picker Picker

	subs    []subscription
	nextSub int
}

// New creates an engine. Panes start on the month of the initial selection
// when one is configured, and on the current month otherwise.
func New(opts Options) *Engine {
	e := &Engine{opts: opts.normalized(), autoDual: true}
	e.loadInitialSelection()

	anchor := months.FromTime(e.today())
	switch {
	case e.opts.Mode == ModeSingle && !e.selected.IsZero():
		anchor = e.monthOf(e.selected)
	case e.opts.Mode == ModeRange && !e.start.IsZero():
		anchor = e.monthOf(e.start)
	}
	e.displayed = months.Ensure(nil, e.ActivePanes(), anchor)
	return e
}

func (e *Engine) loadInitialSelection() {
	if k, ok := dates.ParseKey(e.opts.Value); ok {
		e.selected = k
	}
	e.assignRange(e.opts.StartDate, e.opts.EndDate)
}

// assignRange stores a programmatic range. A malformed start clears the
// whole range; a malformed end leaves only the start. Inverted bounds are
// swapped.
func (e *Engine) assignRange(start, end string) {
	e.start, e.end, e.hover = "", "", ""
	s, ok := dates.ParseKey(start)
	if !ok {
		return
	}
	e.start = s
	if en, ok := dates.ParseKey(end); ok {
		if en < s {
			e.start, e.end = en, s
		} else {
			e.end = en
		}
	}
}

// Configure applies new options between renders. The current selection is
// kept as-is even when the mode changes; initial-value fields are ignored.
func (e *Engine) Configure(opts Options) {
	next := opts.normalized()
	e.opts = next
	if next.Mode != ModeRange {
		e.hover = ""
	}
	e.EnsureDisplayedMonths()
}

// Options returns the normalized options in effect.
func (e *Engine) Options() Options { return e.opts }

// SetConstraints replaces the selection constraints.
func (e *Engine) SetConstraints(c dates.Constraints) {
	e.opts.Constraints = normalizeConstraints(c)
}

// Mode returns the selection mode.
func (e *Engine) Mode() Mode { return e.opts.Mode }

// Locale returns the pass-through locale.
func (e *Engine) Locale() string { return e.opts.Locale }

// FirstDayOfWeek returns the configured first weekday.
func (e *Engine) FirstDayOfWeek() time.Weekday { return e.opts.FirstDayOfWeek }

// Location returns the location used to build times from keys.
func (e *Engine) Location() *time.Location { return e.opts.Location }

// ActivePanes returns how many panes are shown: always 1 in single mode, and
// 1 or 2 in range mode depending on the configured count and, for "auto",
// on the last width evaluation.
func (e *Engine) ActivePanes() int {
	if e.opts.Mode != ModeRange {
		return 1
	}
	switch e.opts.RangeCalendarCount {
	case PanesOne:
		return 1
	case PanesTwo:
		return 2
	}
	if e.autoDual {
		return 2
	}
	return 1
}

// DisplayedMonths returns a snapshot of the displayed panes.
func (e *Engine) DisplayedMonths() months.List {
	return e.displayed.Clone()
}

// SetDisplayedMonths replaces the displayed panes. See months.Set for the
// truncation and adjacency rules; the result is then fitted to the active
// pane count. An empty list is ignored.
func (e *Engine) SetDisplayedMonths(list []months.Descriptor, enforceAdjacency bool) {
	if len(list) == 0 {
		return
	}
	next := months.Set(list, enforceAdjacency)
	e.commitMonths(months.Ensure(next, e.ActivePanes(), next[0]))
}

// EnsureDisplayedMonths fits the panes to the active pane count. It is
// idempotent.
func (e *Engine) EnsureDisplayedMonths() {
	e.commitMonths(months.Ensure(e.displayed, e.ActivePanes(), months.FromTime(e.today())))
}

// SetMonth sets the month (0-11, wrapped when out of range) of one pane.
func (e *Engine) SetMonth(side months.Side, month int) {
	e.commitMonths(e.displayed.WithMonth(e.sideFor(side), month))
}

// SetYear sets the year (clamped to 1..9999) of one pane.
func (e *Engine) SetYear(side months.Side, year int) {
	e.commitMonths(e.displayed.WithYear(e.sideFor(side), year))
}

func (e *Engine) commitMonths(next months.List) {
	if next.Equal(e.displayed) {
		return
	}
	prev := e.displayed
	e.displayed = next
	e.emit(MonthsChanged{Months: next.Clone(), Previous: prev.Clone()})
}

// sideFor maps left/right to the sole pane when only one is active.
func (e *Engine) sideFor(side months.Side) months.Side {
	if len(e.displayed) < 2 {
		return months.SideSingle
	}
	return side
}

// Phase reports the current selection state for the configured mode.
func (e *Engine) Phase() Phase {
	if e.opts.Mode == ModeSingle {
		if e.selected.IsZero() {
			return PhaseIdle
		}
		return PhaseSingleSelected
	}
	switch {
	case e.start.IsZero():
		return PhaseIdle
	case e.end.IsZero():
		return PhaseStartSelected
	default:
		return PhaseRangeComplete
	}
}

// Value returns the single-mode selection or "".
func (e *Engine) Value() dates.Key { return e.selected }

// StartDate returns the range start or "".
func (e *Engine) StartDate() dates.Key { return e.start }

// EndDate returns the range end or "".
func (e *Engine) EndDate() dates.Key { return e.end }

// HoverDate returns the range preview date or "".
func (e *Engine) HoverDate() dates.Key { return e.hover }

// SetValue sets the single-mode selection programmatically. Malformed input
// clears it. No event is emitted.
func (e *Engine) SetValue(v string) {
	k, _ := dates.ParseKey(v)
	e.selected = k
	if !k.IsZero() {
		e.focus = k
	}
}

// SetRange sets the range programmatically under the same rules as the
// initial StartDate/EndDate options. No event is emitted.
func (e *Engine) SetRange(start, end string) {
	e.assignRange(start, end)
	if !e.start.IsZero() {
		e.focus = e.start
	}
}

// Clear drops every selection field.
func (e *Engine) Clear() {
	e.selected, e.start, e.end, e.hover = "", "", "", ""
}

func (e *Engine) today() time.Time {
	return e.opts.Now().In(e.opts.Location)
}

// Today returns the current date key.
func (e *Engine) Today() dates.Key { return dates.Format(e.today()) }

func (e *Engine) monthOf(k dates.Key) months.Descriptor {
	t, ok := k.Time(e.opts.Location)
	if !ok {
		return months.FromTime(e.today())
	}
	return months.FromTime(t)
}
