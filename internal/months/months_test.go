package months

import (
	"testing"
	"time"
)

func TestAddMonthWraps(t *testing.T) {
	tests := []struct {
		in    Descriptor
		delta int
		want  Descriptor
	}{
		{Descriptor{11, 2025}, 1, Descriptor{0, 2026}},
		{Descriptor{0, 2025}, -1, Descriptor{11, 2024}},
		{Descriptor{5, 2024}, 0, Descriptor{5, 2024}},
		{Descriptor{5, 2024}, 25, Descriptor{6, 2026}},
		{Descriptor{5, 2024}, -30, Descriptor{11, 2021}},
	}
	for _, tc := range tests {
		if got := AddMonth(tc.in, tc.delta); got != tc.want {
			t.Fatalf("AddMonth(%v, %d): expected %v, got %v", tc.in, tc.delta, tc.want, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := (Descriptor{Month: 47, Year: 2024}).Normalize(); got != (Descriptor{Month: 11, Year: 2027}) {
		t.Fatalf("unexpected normalize result %v", got)
	}
	if got := (Descriptor{Month: -1, Year: 2024}).Normalize(); got != (Descriptor{Month: 11, Year: 2023}) {
		t.Fatalf("unexpected normalize result %v", got)
	}
	if got := (Descriptor{Month: 3, Year: 0}).Normalize(); got != (Descriptor{Month: 0, Year: 1}) {
		t.Fatalf("expected clamp to year 1, got %v", got)
	}
	if got := (Descriptor{Month: 3, Year: 12000}).Normalize(); got != (Descriptor{Month: 11, Year: 9999}) {
		t.Fatalf("expected clamp to year 9999, got %v", got)
	}
}

func TestDescriptorCalendarHelpers(t *testing.T) {
	feb := Descriptor{Month: 1, Year: 2024}
	if feb.Days() != 29 {
		t.Fatalf("expected 29 days in Feb 2024, got %d", feb.Days())
	}
	first := feb.First(time.UTC)
	if first.Day() != 1 || first.Month() != time.February {
		t.Fatalf("unexpected first day %v", first)
	}
	if !feb.Contains(time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Feb 29 to be contained")
	}
	if FromTime(first) != feb {
		t.Fatalf("FromTime mismatch")
	}
	if feb.Diff(Descriptor{Month: 0, Year: 2025}) != 11 {
		t.Fatalf("unexpected diff")
	}
}

func TestSetEnforcesAdjacency(t *testing.T) {
	got := Set([]Descriptor{{0, 2025}, {5, 2025}}, true)
	want := List{{0, 2025}, {1, 2025}}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for m := 0; m < 24; m++ {
		first := Descriptor{Month: m % 12, Year: 2020 + m/12}
		l := Set([]Descriptor{first, {Month: 3, Year: 1999}}, true)
		if l[1] != AddMonth(l[0], 1) {
			t.Fatalf("adjacency violated for %v: %v", first, l)
		}
	}
}

func TestSetWithoutEnforcementKeepsValues(t *testing.T) {
	got := Set([]Descriptor{{0, 2025}, {5, 2025}}, false)
	if !got.Equal(List{{0, 2025}, {5, 2025}}) {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestSetTruncatesToTwo(t *testing.T) {
	in := []Descriptor{{0, 2025}, {1, 2025}, {2, 2025}}
	got := Set(in, true)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	got[0].Month = 9
	if in[0].Month != 0 {
		t.Fatalf("Set must not alias its input")
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	fallback := Descriptor{Month: 5, Year: 2024}
	inputs := []List{
		nil,
		{{0, 2025}},
		{{0, 2025}, {7, 2025}},
		{{0, 2025}, {1, 2025}, {2, 2025}},
	}
	for _, panes := range []int{1, 2} {
		for _, in := range inputs {
			once := Ensure(in, panes, fallback)
			twice := Ensure(once, panes, fallback)
			if !once.Equal(twice) {
				t.Fatalf("panes=%d in=%v: %v != %v", panes, in, once, twice)
			}
			if len(once) != panes {
				t.Fatalf("panes=%d in=%v: got %d entries", panes, in, len(once))
			}
		}
	}
	if got := Ensure(List{{0, 2025}, {7, 2025}}, 2, fallback); got[1] != (Descriptor{7, 2025}) {
		t.Fatalf("ensure must not re-enforce adjacency on an existing pair: %v", got)
	}
	if got := Ensure(nil, 1, fallback); got[0] != fallback {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestSideEditsKeepPanesAdjacent(t *testing.T) {
	pair := List{{5, 2024}, {6, 2024}}

	left := pair.WithMonth(SideLeft, 11)
	if !left.Equal(List{{11, 2024}, {0, 2025}}) {
		t.Fatalf("left edit: %v", left)
	}
	right := pair.WithMonth(SideRight, 0)
	if !right.Equal(List{{11, 2023}, {0, 2024}}) {
		t.Fatalf("right edit: %v", right)
	}
	year := pair.WithYear(SideRight, 2030)
	if !year.Equal(List{{5, 2030}, {6, 2030}}) {
		t.Fatalf("right year edit: %v", year)
	}
	if !pair.Equal(List{{5, 2024}, {6, 2024}}) {
		t.Fatalf("edits must not mutate the receiver: %v", pair)
	}

	single := List{{0, 2024}}
	if got := single.Shift(SideSingle, -1); !got.Equal(List{{11, 2023}}) {
		t.Fatalf("single shift: %v", got)
	}
	if got := single.WithMonth(SideRight, 47); !got.Equal(List{{11, 2027}}) {
		t.Fatalf("right on single pane should act on the sole pane: %v", got)
	}
}

func TestPairsStayWithinYearRange(t *testing.T) {
	top := List{{10, 9999}, {11, 9999}}
	bottom := List{{0, 1}, {1, 1}}
	tests := []struct {
		name string
		got  List
		want List
	}{
		{"set last month", Set([]Descriptor{{11, 9999}, {3, 2024}}, true), top},
		{"ensure last month", Ensure(List{{11, 9999}}, 2, Descriptor{}), top},
		{"left past the end", List{{5, 2024}, {6, 2024}}.WithYear(SideLeft, 12000), top},
		{"left shift past the end", top.Shift(SideLeft, 1), top},
		{"right to first month", List{{5, 2024}, {6, 2024}}.WithYear(SideRight, 1).WithMonth(SideRight, 0), bottom},
		{"right before the start", List{{5, 2024}, {6, 2024}}.WithYear(SideRight, 0), bottom},
		{"right shift before the start", bottom.Shift(SideRight, -1), bottom},
	}
	for _, tc := range tests {
		if !tc.got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, tc.got)
		}
		for _, d := range tc.got {
			if d.Year < 1 || d.Year > 9999 {
				t.Fatalf("%s: year %d out of range", tc.name, d.Year)
			}
		}
	}
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]Side{"single": SideSingle, "LEFT": SideLeft, " right ": SideRight} {
		got, ok := ParseSide(in)
		if !ok || got != want {
			t.Fatalf("ParseSide(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseSide("middle"); ok {
		t.Fatalf("expected unknown side to be rejected")
	}
	var s Side
	if err := s.UnmarshalText([]byte("right")); err != nil || s != SideRight {
		t.Fatalf("unmarshal: %v %v", s, err)
	}
}
