package blackout

import (
	"fmt"
	"strings"
	"time"

	cerrors "cloudeng.io/errors"
	"github.com/teambition/rrule-go"

	"rangecal/internal/dates"
)

// ExpandRules expands RRULE strings such as "FREQ=WEEKLY;BYDAY=SA,SU" into
// the dates they hit inside w. A rule may carry its own DTSTART line;
// otherwise it starts at w.Start. Bad rules are reported together and the
// good ones still contribute.
func ExpandRules(rules []string, w Window) (dates.Set, error) {
	if w.Location == nil {
		w.Location = time.Local
	}
	set := dates.NewSet()
	var errs cerrors.M
	for _, raw := range rules {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		opt, err := rrule.StrToROptionInLocation(raw, w.Location)
		if err != nil {
			errs.Append(fmt.Errorf("blackout: rule %q: %w", raw, err))
			continue
		}
		if opt.Dtstart.IsZero() {
			opt.Dtstart = w.Start
		}
		r, err := rrule.NewRRule(*opt)
		if err != nil {
			errs.Append(fmt.Errorf("blackout: rule %q: %w", raw, err))
			continue
		}
		for _, t := range r.Between(w.Start, w.End, true) {
			k := dates.Format(t.In(w.Location))
			if w.Contains(k) {
				set.Add(k)
			}
		}
	}
	return set, errs.Err()
}
