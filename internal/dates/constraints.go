package dates

import "time"

// Constraints restricts which dates may be selected. Navigation ignores
// them; only selection attempts are checked.
type Constraints struct {
	// Disabled rejects every date.
	Disabled bool
	// Min and Max bound the selectable interval inclusively. Unset keys do
	// not constrain.
	Min Key
	Max Key
	// Excluded lists individual dates that may never be selected.
	Excluded Set
}

// IsDisabled reports whether t may not be selected under c.
func (c Constraints) IsDisabled(t time.Time) bool {
	return IsDateDisabled(t, c.Disabled, c.Min, c.Max, c.Excluded)
}

// IsKeyDisabled is IsDisabled for a key.
func (c Constraints) IsKeyDisabled(k Key) bool {
	return isKeyDisabled(k, c.Disabled, c.Min, c.Max, c.Excluded)
}

// IsDateDisabled returns true when disabled is set, when date falls before
// min or after max, or when date is a member of excluded. Comparisons are
// made at calendar-day granularity.
func IsDateDisabled(date time.Time, disabled bool, min, max Key, excluded Set) bool {
	return isKeyDisabled(Format(date), disabled, min, max, excluded)
}

func isKeyDisabled(k Key, disabled bool, min, max Key, excluded Set) bool {
	if disabled {
		return true
	}
	if !min.IsZero() && k < min {
		return true
	}
	if !max.IsZero() && k > max {
		return true
	}
	return excluded.Has(k)
}
