package dates

import (
	"testing"
	"time"
)

func TestFormatPadsMonthAndDay(t *testing.T) {
	got := Format(time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC))
	if got != "2024-03-07" {
		t.Fatalf("expected 2024-03-07, got %s", got)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)
	sawLeapDay := false
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := Format(d)
		back, err := ParseInLocation(string(key), time.UTC)
		if err != nil {
			t.Fatalf("parse %s: %v", key, err)
		}
		if back.Year() != d.Year() || back.Month() != d.Month() || back.Day() != d.Day() {
			t.Fatalf("round trip mismatch: %v -> %s -> %v", d, key, back)
		}
		if d.Month() == time.February && d.Day() == 29 {
			sawLeapDay = true
		}
	}
	if !sawLeapDay {
		t.Fatalf("expected range to include Feb 29")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "2024-6-1", "2024/06/01", "2023-02-29", "2024-13-01", "2024-00-10", "2024-04-31", "abcd-01-01"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
		if _, ok := ParseKey(in); ok {
			t.Fatalf("expected ParseKey to reject %q", in)
		}
	}
	if k, ok := ParseKey("2024-02-29"); !ok || k != "2024-02-29" {
		t.Fatalf("expected leap day to parse, got %q %v", k, ok)
	}
}

func TestIsSameDayIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.June, 15, 23, 30, 0, 0, time.UTC)
	if !IsSameDay(a, b) {
		t.Fatalf("expected same day")
	}
	if IsSameDay(a, b.AddDate(0, 0, 1)) {
		t.Fatalf("expected different days")
	}
}

func TestIsDateDisabled(t *testing.T) {
	day := func(s string) time.Time {
		tm, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return tm.Add(15 * time.Hour)
	}
	excluded := NewSet("2024-06-12")

	tests := []struct {
		name     string
		date     string
		disabled bool
		min, max Key
		want     bool
	}{
		{name: "unconstrained", date: "2024-06-10", want: false},
		{name: "flag", date: "2024-06-10", disabled: true, want: true},
		{name: "before min", date: "2024-06-01", min: "2024-06-05", want: true},
		{name: "on min", date: "2024-06-05", min: "2024-06-05", want: false},
		{name: "after max", date: "2024-06-21", max: "2024-06-20", want: true},
		{name: "on max", date: "2024-06-20", max: "2024-06-20", want: false},
		{name: "excluded", date: "2024-06-12", want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IsDateDisabled(day(tc.date), tc.disabled, tc.min, tc.max, excluded)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBetweenIsStrictAndOrderFree(t *testing.T) {
	if !Between("2024-06-12", "2024-06-10", "2024-06-15") {
		t.Fatalf("expected inside")
	}
	if !Between("2024-06-12", "2024-06-15", "2024-06-10") {
		t.Fatalf("expected inside with reversed bounds")
	}
	if Between("2024-06-10", "2024-06-10", "2024-06-15") {
		t.Fatalf("bounds are not strictly between")
	}
	if Between("2024-06-10", "2024-06-10", "2024-06-10") {
		t.Fatalf("equal bounds must be empty")
	}
}

func TestParseRangeSwapsAndExpands(t *testing.T) {
	keys, err := ParseRange("2024-03-02:2024-02-27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Key{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
	if _, err := ParseRange("2024-03-02"); err == nil {
		t.Fatalf("expected error for missing separator")
	}
}

func TestSetMergeAndKeys(t *testing.T) {
	a := NewSet("2024-01-03", "2024-01-01")
	b := NewSet("2024-01-02", "")
	merged := a.Merge(b)
	keys := merged.Keys()
	if len(keys) != 3 || keys[0] != "2024-01-01" || keys[2] != "2024-01-03" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if len(a) != 2 {
		t.Fatalf("merge must not mutate receiver")
	}
	var empty Set
	if empty.Has("2024-01-01") {
		t.Fatalf("nil set must be empty")
	}
}
