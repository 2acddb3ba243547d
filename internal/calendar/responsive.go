package calendar

// WidthProvider measures the host container. Hosts inject it so the engine
// never reads global layout state.
type WidthProvider interface {
	Width() int
}

// WidthFunc adapts a function to WidthProvider.
type WidthFunc func() int

// Width implements WidthProvider.
func (f WidthFunc) Width() int { return f() }

// EvaluateWidth recomputes the dual-pane decision from width when the range
// calendar count is "auto": two panes at or above the threshold, one below.
// The result is derived fresh from width each time, so repeated calls on
// every resize tick never drift. With a fixed count it changes nothing.
// It returns the current auto-dual flag.
func (e *Engine) EvaluateWidth(width int) bool {
	if e.opts.RangeCalendarCount != PanesAuto {
		return e.autoDual
	}
	e.autoDual = width >= e.opts.DualPaneThreshold
	e.EnsureDisplayedMonths()
	return e.autoDual
}

// Measure evaluates the width reported by p.
func (e *Engine) Measure(p WidthProvider) bool {
	if p == nil {
		return e.autoDual
	}
	return e.EvaluateWidth(p.Width())
}

// AutoDual reports the last auto-width decision. It is only meaningful when
// the range calendar count is "auto".
func (e *Engine) AutoDual() bool { return e.autoDual }

// DualPaneThreshold returns the width threshold in effect.
func (e *Engine) DualPaneThreshold() int { return e.opts.DualPaneThreshold }
