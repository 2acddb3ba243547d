package calendar

import (
	"time"

	"rangecal/internal/dates"
)

// Click applies a day click. Clicks on disabled dates are ignored without
// any state change or event; Click reports whether the click was accepted.
func (e *Engine) Click(t time.Time) bool {
	key := dates.Format(t)
	if e.opts.Constraints.IsKeyDisabled(key) {
		return false
	}
	e.focus = key

	if e.opts.Mode == ModeSingle {
		prev := e.selected
		e.selected = key
		e.emit(DateSelected{Date: key, Time: dates.StartOfDay(t), Previous: prev})
		return true
	}

	prevStart, prevEnd := e.start, e.end
	if e.Phase() == PhaseStartSelected {
		if key < e.start {
			e.start, e.end = key, e.start
		} else {
			// Same-day clicks produce a valid zero-length range.
			e.end = key
		}
		e.hover = ""
		e.emit(RangeSelected{Start: e.start, End: e.end, PreviousStart: prevStart, PreviousEnd: prevEnd})
		return true
	}

	e.start, e.end, e.hover = key, "", ""
	e.emit(RangeStarted{Start: key, PreviousStart: prevStart, PreviousEnd: prevEnd})
	return true
}

// ClickKey is Click for a textual date. Malformed keys are ignored.
func (e *Engine) ClickKey(v string) bool {
	t, err := dates.ParseInLocation(v, e.opts.Location)
	if err != nil {
		return false
	}
	return e.Click(t)
}

// HoverEnter records the preview end while a range is half selected. In any
// other state it does nothing and reports false.
func (e *Engine) HoverEnter(t time.Time) bool {
	if e.opts.Mode != ModeRange || e.Phase() != PhaseStartSelected {
		return false
	}
	e.hover = dates.Format(t)
	return true
}

// HoverLeave clears the preview without touching the range bounds.
func (e *Engine) HoverLeave() {
	e.hover = ""
}

// IsDisabled reports whether t cannot be selected.
func (e *Engine) IsDisabled(t time.Time) bool {
	return e.opts.Constraints.IsDisabled(t)
}

// IsSelected reports whether t is the single selection or a range bound.
func (e *Engine) IsSelected(t time.Time) bool {
	k := dates.Format(t)
	if e.opts.Mode == ModeSingle {
		return k == e.selected
	}
	return k == e.start || k == e.end
}

// IsRangeStart reports whether t is the range start.
func (e *Engine) IsRangeStart(t time.Time) bool {
	return e.opts.Mode == ModeRange && dates.Format(t) == e.start
}

// IsRangeEnd reports whether t is the range end.
func (e *Engine) IsRangeEnd(t time.Time) bool {
	return e.opts.Mode == ModeRange && !e.end.IsZero() && dates.Format(t) == e.end
}

// InRange reports whether t lies strictly inside the completed range or,
// while the range is half selected, strictly between the start and the
// hovered date in either order. Hovering the start itself previews nothing.
func (e *Engine) InRange(t time.Time) bool {
	if e.opts.Mode != ModeRange {
		return false
	}
	k := dates.Format(t)
	switch e.Phase() {
	case PhaseRangeComplete:
		return dates.Between(k, e.start, e.end)
	case PhaseStartSelected:
		return dates.Between(k, e.start, e.hover)
	}
	return false
}

// InPreview reports whether t is part of the hover preview, including the
// hovered date itself.
func (e *Engine) InPreview(t time.Time) bool {
	if e.Phase() != PhaseStartSelected || e.hover.IsZero() || e.hover == e.start {
		return false
	}
	k := dates.Format(t)
	return k == e.hover || dates.Between(k, e.start, e.hover)
}

// Day bundles the per-day flags a renderer needs.
type Day struct {
	Key        dates.Key
	Time       time.Time
	Disabled   bool
	Today      bool
	Selected   bool
	RangeStart bool
	RangeEnd   bool
	InRange    bool
	InPreview  bool
	Focused    bool
}

// Day describes t for rendering.
func (e *Engine) Day(t time.Time) Day {
	k := dates.Format(t)
	return Day{
		Key:        k,
		Time:       dates.StartOfDay(t),
		Disabled:   e.IsDisabled(t),
		Today:      k == e.Today(),
		Selected:   e.IsSelected(t),
		RangeStart: e.IsRangeStart(t),
		RangeEnd:   e.IsRangeEnd(t),
		InRange:    e.InRange(t),
		InPreview:  e.InPreview(t),
		Focused:    k == e.FocusDate(),
	}
}
