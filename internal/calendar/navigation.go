package calendar

import (
	"time"

	"rangecal/internal/dates"
	"rangecal/internal/months"
)

// yearsPerPage is the number of years a year picker shows at once.
const yearsPerPage = 12

// Navigate moves the pane named by side one month back (direction < 0) or
// forward (direction > 0). The other pane follows. Browsing is never limited
// by the selection constraints.
func (e *Engine) Navigate(side months.Side, direction int) {
	switch {
	case direction < 0:
		direction = -1
	case direction > 0:
		direction = 1
	default:
		return
	}
	e.commitMonths(e.displayed.Shift(e.sideFor(side), direction))
}

// Previous is Navigate(side, -1).
func (e *Engine) Previous(side months.Side) { e.Navigate(side, -1) }

// Next is Navigate(side, +1).
func (e *Engine) Next(side months.Side) { e.Navigate(side, 1) }

// PickerKind identifies an overlay picker.
type PickerKind int

const (
	PickerNone PickerKind = iota
	PickerMonth
	PickerYear
)

func (k PickerKind) String() string {
	switch k {
	case PickerMonth:
		return "month"
	case PickerYear:
		return "year"
	default:
		return "none"
	}
}

// Picker is the open overlay, if any.
type Picker struct {
	Kind PickerKind
	Side months.Side
	// YearPageStart is the first year listed by an open year picker.
	YearPageStart int
}

// Open reports whether a picker is showing.
func (p Picker) Open() bool { return p.Kind != PickerNone }

// Picker returns the overlay state.
func (e *Engine) Picker() Picker { return e.picker }

// OpenMonthPicker opens the month overlay for side.
func (e *Engine) OpenMonthPicker(side months.Side) { e.openPicker(PickerMonth, side) }

// OpenYearPicker opens the year overlay for side on the page holding the
// pane's current year.
func (e *Engine) OpenYearPicker(side months.Side) { e.openPicker(PickerYear, side) }

func (e *Engine) openPicker(kind PickerKind, side months.Side) {
	side = e.sideFor(side)
	if e.picker.Open() {
		e.closePicker(false)
	}
	p := Picker{Kind: kind, Side: side}
	if kind == PickerYear {
		p.YearPageStart = yearPageStart(e.paneFor(side).Year)
	}
	e.picker = p
	e.emit(PickerOpened{Kind: kind, Side: side})
}

// SelectPickerMonth applies month through SetMonth and closes the month
// picker. It reports false when no month picker is open.
func (e *Engine) SelectPickerMonth(month int) bool {
	if e.picker.Kind != PickerMonth {
		return false
	}
	e.SetMonth(e.picker.Side, month)
	e.closePicker(true)
	return true
}

// SelectPickerYear applies year through SetYear and closes the year picker.
// It reports false when no year picker is open.
func (e *Engine) SelectPickerYear(year int) bool {
	if e.picker.Kind != PickerYear {
		return false
	}
	e.SetYear(e.picker.Side, year)
	e.closePicker(true)
	return true
}

// ClosePicker dismisses the overlay (backdrop click, Escape) without
// touching the displayed months.
func (e *Engine) ClosePicker() {
	if e.picker.Open() {
		e.closePicker(false)
	}
}

func (e *Engine) closePicker(applied bool) {
	p := e.picker
	e.picker = Picker{}
	e.emit(PickerClosed{Kind: p.Kind, Side: p.Side, Applied: applied})
}

// YearPage lists the years shown by the open year picker.
func (e *Engine) YearPage() []int {
	if e.picker.Kind != PickerYear {
		return nil
	}
	out := make([]int, yearsPerPage)
	for i := range out {
		out[i] = e.picker.YearPageStart + i
	}
	return out
}

// ShiftYearPage pages the year picker by delta pages.
func (e *Engine) ShiftYearPage(delta int) {
	if e.picker.Kind != PickerYear {
		return
	}
	e.picker.YearPageStart += delta * yearsPerPage
}

func yearPageStart(year int) int {
	r := year % yearsPerPage
	if r < 0 {
		r += yearsPerPage
	}
	return year - r
}

func (e *Engine) paneFor(side months.Side) months.Descriptor {
	if side == months.SideRight && len(e.displayed) > 1 {
		return e.displayed[1]
	}
	if len(e.displayed) == 0 {
		return months.FromTime(e.today())
	}
	return e.displayed[0]
}

// FocusDate returns the keyboard-focused date. Without an explicit focus it
// is the selection, then today when visible, then the first visible day.
func (e *Engine) FocusDate() dates.Key {
	if !e.focus.IsZero() {
		return e.focus
	}
	if e.opts.Mode == ModeSingle && !e.selected.IsZero() {
		return e.selected
	}
	if e.opts.Mode == ModeRange && !e.start.IsZero() {
		return e.start
	}
	now := e.today()
	for _, d := range e.displayed {
		if d.Contains(now) {
			return dates.Format(now)
		}
	}
	return dates.Format(e.paneFor(months.SideSingle).First(e.opts.Location))
}

// Key handles keyboard input named by DOM KeyboardEvent.key values. It
// reports whether the key was consumed.
func (e *Engine) Key(key string) bool {
	if key == "Escape" {
		switch {
		case e.picker.Open():
			e.ClosePicker()
		case !e.hover.IsZero():
			e.HoverLeave()
		default:
			return false
		}
		return true
	}
	if e.picker.Open() {
		return false
	}

	focus, ok := e.FocusDate().Time(e.opts.Location)
	if !ok {
		return false
	}
	switch key {
	case "ArrowLeft":
		e.moveFocus(focus.AddDate(0, 0, -1))
	case "ArrowRight":
		e.moveFocus(focus.AddDate(0, 0, 1))
	case "ArrowUp":
		e.moveFocus(focus.AddDate(0, 0, -7))
	case "ArrowDown":
		e.moveFocus(focus.AddDate(0, 0, 7))
	case "PageUp":
		e.moveFocus(addMonthsClamped(focus, -1))
	case "PageDown":
		e.moveFocus(addMonthsClamped(focus, 1))
	case "Home":
		back := (int(focus.Weekday()) - int(e.opts.FirstDayOfWeek) + 7) % 7
		e.moveFocus(focus.AddDate(0, 0, -back))
	case "End":
		back := (int(focus.Weekday()) - int(e.opts.FirstDayOfWeek) + 7) % 7
		e.moveFocus(focus.AddDate(0, 0, 6-back))
	case "Enter", " ", "Space":
		e.Click(focus)
	default:
		return false
	}
	return true
}

// moveFocus focuses t, previews it while a range is half selected and
// scrolls the panes so t is visible.
func (e *Engine) moveFocus(t time.Time) {
	e.focus = dates.Format(t)
	if e.Phase() == PhaseStartSelected {
		e.hover = e.focus
	}
	if len(e.displayed) == 0 {
		return
	}
	target := months.FromTime(t)
	first := e.displayed[0]
	last := e.displayed[len(e.displayed)-1]
	switch {
	case target.Before(first):
		e.commitMonths(e.displayed.Shift(months.SideSingle, first.Diff(target)))
	case last.Before(target):
		side := months.SideSingle
		if len(e.displayed) > 1 {
			side = months.SideRight
		}
		e.commitMonths(e.displayed.Shift(side, last.Diff(target)))
	}
}

// addMonthsClamped moves t by delta months, keeping the day within the
// target month (Jan 31 + 1 month is Feb 28/29).
func addMonthsClamped(t time.Time, delta int) time.Time {
	target := months.FromTime(t).Add(delta)
	day := t.Day()
	if n := target.Days(); day > n {
		day = n
	}
	return time.Date(target.Year, time.Month(target.Month+1), day, 0, 0, 0, 0, t.Location())
}
