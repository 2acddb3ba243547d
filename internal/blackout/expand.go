package blackout

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"rangecal/internal/dates"
	appLog "rangecal/internal/log"
)

const defaultMaxOccurrencesPerEvent = 5000

// Window is the half-open span [Start, End) over which sources are expanded.
type Window struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// NewWindow covers today through today+horizonDays inclusive in loc.
func NewWindow(now time.Time, horizonDays int, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	if horizonDays < 0 {
		horizonDays = 0
	}
	start := dates.StartOfDay(now.In(loc))
	return Window{Start: start, End: start.AddDate(0, 0, horizonDays+1), Location: loc}
}

func (w Window) firstKey() dates.Key { return dates.Format(w.Start) }
func (w Window) lastKey() dates.Key  { return dates.Format(w.End.Add(-time.Nanosecond)) }

// Contains reports whether k falls inside the window.
func (w Window) Contains(k dates.Key) bool {
	return dates.Compare(k, w.firstKey()) >= 0 && dates.Compare(k, w.lastKey()) <= 0
}

// Occurrence is one concrete instance of an event.
type Occurrence struct {
	SourceID string
	UID      string
	Summary  string
	AllDay   bool
	Start    time.Time
	End      time.Time
}

// Days returns every date the occurrence touches. All-day occurrences use
// their calendar dates as written; timed ones are converted to loc first.
// End is exclusive.
func (o Occurrence) Days(loc *time.Location) []dates.Key {
	var first, last time.Time
	if o.AllDay {
		first = time.Date(o.Start.Year(), o.Start.Month(), o.Start.Day(), 0, 0, 0, 0, time.UTC)
		end := time.Date(o.End.Year(), o.End.Month(), o.End.Day(), 0, 0, 0, 0, time.UTC)
		last = end.AddDate(0, 0, -1)
		if last.Before(first) {
			last = first
		}
	} else {
		start := o.Start.In(loc)
		end := o.End.In(loc)
		first = dates.StartOfDay(start)
		if end.After(start) {
			last = dates.StartOfDay(end.Add(-time.Nanosecond))
		} else {
			last = first
		}
	}
	var out []dates.Key
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, dates.Format(d))
	}
	return out
}

// ExpandResult holds the expanded occurrences and the UIDs that hit the cap.
type ExpandResult struct {
	Occurrences     []Occurrence
	TruncatedEvents []string
}

// Days collects the blocked dates inside w.
func (r ExpandResult) Days(w Window) dates.Set {
	set := dates.NewSet()
	for _, occ := range r.Occurrences {
		for _, k := range occ.Days(w.Location) {
			if w.Contains(k) {
				set.Add(k)
			}
		}
	}
	return set
}

// ExpandEvents expands single and recurring events inside w, applying
// EXDATE and RECURRENCE-ID overrides. Transparent and cancelled instances
// block nothing.
func ExpandEvents(events []Event, w Window) (ExpandResult, error) {
	var result ExpandResult
	if w.End.Before(w.Start) {
		return result, errors.New("expand: window end is before start")
	}
	if w.Location == nil {
		w.Location = time.Local
	}

	baseByUID := make(map[string][]Event)
	overridesByUID := make(map[string][]Event)
	var order []string
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range order {
		truncated := false
		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], w)
			truncated = truncated || hitCap
			result.Occurrences = append(result.Occurrences, occ...)
		}
		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("blackout expand truncated", "uid", uid, "cap", defaultMaxOccurrencesPerEvent)
		}
	}
	return result, nil
}

func expandEvent(ev Event, overrides []Event, w Window) ([]Occurrence, bool) {
	// A day of slack on both sides absorbs zone offsets between floating
	// all-day values and the window; Days clips exactly.
	lo, hi := w.Start.AddDate(0, 0, -1), w.End.AddDate(0, 0, 1)

	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, lo, hi) {
			return nil, false
		}
		if occ, ok := instance(ev, overrides, ev.Start, ev.End); ok {
			return []Occurrence{occ}, false
		}
		return nil, false
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("blackout expand: bad RRULE", "uid", ev.UID, "rrule", ev.RawRRule, "err", err)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Instances that start before the window but run into it still block.
	dur := ev.End.Sub(ev.Start)
	from := lo.Add(-dur).In(ev.Start.Location())
	to := hi.In(ev.Start.Location())
	starts := set.Between(from, to, true)

	hitCap := false
	if len(starts) > defaultMaxOccurrencesPerEvent {
		starts = starts[:defaultMaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		var e time.Time
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			e = s.AddDate(0, 0, int(dur.Hours()/24+0.5))
			if !e.After(s) {
				e = s.AddDate(0, 0, 1)
			}
		} else {
			e = s.Add(dur)
		}
		if occ, ok := instance(ev, overrides, s, e); ok {
			out = append(out, occ)
		}
	}
	return out, hitCap
}

// instance applies a matching override and drops non-blocking instances.
func instance(ev Event, overrides []Event, start, end time.Time) (Occurrence, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			ev, start, end = ov, ov.Start, ov.End
			break
		}
	}
	if ev.Transparent || ev.Cancelled {
		return Occurrence{}, false
	}
	return Occurrence{
		SourceID: ev.Source.ID,
		UID:      ev.UID,
		Summary:  ev.Summary,
		AllDay:   ev.AllDay,
		Start:    start,
		End:      end,
	}, true
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(aStart) {
		aEnd = aStart
	}
	return !aEnd.Before(bStart) && aStart.Before(bEnd)
}
