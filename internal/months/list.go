package months

// List is the ordered sequence of displayed panes (1 or 2 entries).
type List []Descriptor

// Clone returns an independent copy of l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	return append(List(nil), l...)
}

// Equal reports whether both lists hold the same descriptors in order.
func (l List) Equal(o List) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if l[i] != o[i] {
			return false
		}
	}
	return true
}

// Adjacent reports whether a two-pane list is exactly one month apart.
// Lists with fewer than two panes are trivially adjacent.
func (l List) Adjacent() bool {
	if len(l) < 2 {
		return true
	}
	return l[1] == l[0].Add(1)
}

// Set builds the list that replaces the displayed panes. Entries past the
// second are dropped. With enforceAdjacency, a second entry that is not the
// month after the first is recomputed from the first; otherwise supplied
// values are kept as-is. Every entry is normalized.
func Set(in []Descriptor, enforceAdjacency bool) List {
	n := len(in)
	if n > 2 {
		n = 2
	}
	out := make(List, n)
	for i := 0; i < n; i++ {
		out[i] = in[i].Normalize()
	}
	if enforceAdjacency && n == 2 && out[1] != out[0].Add(1) {
		out[0], out[1] = pairFrom(out[0])
	}
	return out
}

// Ensure normalizes l for the given number of active panes. An empty list
// starts from fallback. With one pane the list is trimmed to its first entry;
// with two panes a missing second entry is appended as first+1. An existing
// pair is left untouched. Ensure is idempotent.
func Ensure(l List, panes int, fallback Descriptor) List {
	out := l.Clone()
	if len(out) == 0 {
		out = List{fallback.Normalize()}
	}
	if panes <= 1 {
		return out[:1]
	}
	if len(out) > 2 {
		out = out[:2]
	}
	if len(out) < 2 {
		first, second := pairFrom(out[0])
		out = List{first, second}
	}
	return out
}

// WithMonth sets the month of the pane named by side; the other pane follows.
func (l List) WithMonth(side Side, month int) List {
	return l.apply(side, func(d Descriptor) Descriptor {
		return Descriptor{Month: month, Year: d.Year}
	})
}

// WithYear sets the year of the pane named by side; the other pane follows.
func (l List) WithYear(side Side, year int) List {
	return l.apply(side, func(d Descriptor) Descriptor {
		return Descriptor{Month: d.Month, Year: year}
	})
}

// Shift moves the pane named by side by delta months; the other pane follows.
func (l List) Shift(side Side, delta int) List {
	return l.apply(side, func(d Descriptor) Descriptor {
		return d.Add(delta)
	})
}

// apply edits one pane and re-derives the other so the two stay exactly one
// month apart. SideSingle on a pair behaves like SideLeft; SideRight on a
// single pane behaves like SideSingle.
func (l List) apply(side Side, edit func(Descriptor) Descriptor) List {
	out := l.Clone()
	switch {
	case len(out) == 0:
		return out
	case len(out) == 1:
		out[0] = edit(out[0]).Normalize()
	case side != SideRight:
		out[0], out[1] = pairFrom(edit(out[0]))
	default:
		out[0], out[1] = pairTo(edit(out[1]))
	}
	return out
}

var (
	earliest = Descriptor{Month: 0, Year: minYear}
	latest   = Descriptor{Month: 11, Year: maxYear}
)

// pairFrom returns the adjacent pair starting at first. When first is the
// last representable month the pair ends there instead.
func pairFrom(first Descriptor) (Descriptor, Descriptor) {
	first = first.Normalize()
	if first == latest {
		first = latest.Add(-1)
	}
	return first, first.Add(1)
}

// pairTo returns the adjacent pair ending at second. When second is the
// first representable month the pair starts there instead.
func pairTo(second Descriptor) (Descriptor, Descriptor) {
	second = second.Normalize()
	if second == earliest {
		second = earliest.Add(1)
	}
	return second.Add(-1), second
}
