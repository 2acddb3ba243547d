package calendar

import (
	"fmt"
	"time"

	"rangecal/internal/dates"
	"rangecal/internal/months"
)

// Event is a typed notification emitted after a committed transition.
type Event interface {
	// Name is a stable identifier suitable for wire formats.
	Name() string
	// Describe renders the event for logs.
	Describe() string
}

// Listener receives events synchronously, on the goroutine that drove the
// transition.
type Listener func(Event)

// DateSelected is emitted when a single-mode click selects a date.
type DateSelected struct {
	Date     dates.Key
	Time     time.Time
	Previous dates.Key
}

func (DateSelected) Name() string { return "date-selected" }

func (e DateSelected) Describe() string {
	return fmt.Sprintf(`date:%q prev:%q`, e.Date, e.Previous)
}

// RangeStarted is emitted when a range-mode click begins a new range.
type RangeStarted struct {
	Start         dates.Key
	PreviousStart dates.Key
	PreviousEnd   dates.Key
}

func (RangeStarted) Name() string { return "range-started" }

func (e RangeStarted) Describe() string {
	return fmt.Sprintf(`start:%q prev_start:%q prev_end:%q`, e.Start, e.PreviousStart, e.PreviousEnd)
}

// RangeSelected is emitted when the second click completes a range.
type RangeSelected struct {
	Start         dates.Key
	End           dates.Key
	PreviousStart dates.Key
	PreviousEnd   dates.Key
}

func (RangeSelected) Name() string { return "range-selected" }

func (e RangeSelected) Describe() string {
	return fmt.Sprintf(`start:%q end:%q prev_start:%q prev_end:%q`, e.Start, e.End, e.PreviousStart, e.PreviousEnd)
}

// MonthsChanged is emitted whenever the displayed panes change.
type MonthsChanged struct {
	Months   months.List
	Previous months.List
}

func (MonthsChanged) Name() string { return "months-changed" }

func (e MonthsChanged) Describe() string {
	return fmt.Sprintf(`months:%v prev:%v`, e.Months, e.Previous)
}

// PickerOpened asks the renderer to show a month or year overlay.
type PickerOpened struct {
	Kind PickerKind
	Side months.Side
}

func (PickerOpened) Name() string { return "picker-opened" }

func (e PickerOpened) Describe() string {
	return fmt.Sprintf(`kind:%q side:%q`, e.Kind, e.Side)
}

// PickerClosed is emitted when an overlay closes. Applied is false when it
// was dismissed without a selection.
type PickerClosed struct {
	Kind    PickerKind
	Side    months.Side
	Applied bool
}

func (PickerClosed) Name() string { return "picker-closed" }

func (e PickerClosed) Describe() string {
	return fmt.Sprintf(`kind:%q side:%q applied:%t`, e.Kind, e.Side, e.Applied)
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a function that removes it.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscription{id: id, fn: l})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) emit(ev Event) {
	// Listeners may unsubscribe while being notified.
	subs := append([]subscription(nil), e.subs...)
	for _, s := range subs {
		s.fn(ev)
	}
}
