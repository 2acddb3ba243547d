package web

import (
	"rangecal/internal/calendar"
	"rangecal/internal/grid"
	"rangecal/internal/months"
)

// stateResponse is the JSON shape returned by every session endpoint.
type stateResponse struct {
	Session   string     `json:"session"`
	Mode      string     `json:"mode"`
	Phase     string     `json:"phase"`
	Value     string     `json:"value"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	HoverDate string     `json:"hover_date"`
	FocusDate string     `json:"focus_date"`
	Today     string     `json:"today"`
	AutoDual  bool       `json:"auto_dual"`
	Panes     []paneDTO  `json:"panes"`
	Picker    pickerDTO  `json:"picker"`
	Events    []eventDTO `json:"events"`
	Applied   bool       `json:"applied"`
}

type paneDTO struct {
	Side     months.Side `json:"side"`
	Month    int         `json:"month"`
	Year     int         `json:"year"`
	Title    string      `json:"title"`
	Weekdays []string    `json:"weekdays"`
	Weeks    [][]dayDTO  `json:"weeks"`
}

type dayDTO struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	InMonth    bool   `json:"in_month"`
	Disabled   bool   `json:"disabled,omitempty"`
	Today      bool   `json:"today,omitempty"`
	Selected   bool   `json:"selected,omitempty"`
	RangeStart bool   `json:"range_start,omitempty"`
	RangeEnd   bool   `json:"range_end,omitempty"`
	InRange    bool   `json:"in_range,omitempty"`
	InPreview  bool   `json:"in_preview,omitempty"`
	Focused    bool   `json:"focused,omitempty"`
}

// Classes renders the day flags as CSS classes for the server-side page.
func (d dayDTO) Classes() string {
	out := "day"
	add := func(ok bool, c string) {
		if ok {
			out += " " + c
		}
	}
	add(!d.InMonth, "outside")
	add(d.Disabled, "disabled")
	add(d.Today, "today")
	add(d.Selected, "selected")
	add(d.RangeStart, "range-start")
	add(d.RangeEnd, "range-end")
	add(d.InRange, "in-range")
	add(d.InPreview, "in-preview")
	add(d.Focused, "focused")
	return out
}

type pickerDTO struct {
	Open   bool        `json:"open"`
	Kind   string      `json:"kind"`
	Side   months.Side `json:"side"`
	Months []string    `json:"months,omitempty"`
	Years  []int       `json:"years,omitempty"`
}

type eventDTO struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// paneSide maps a pane index to the side that addresses it.
func paneSide(i, n int) months.Side {
	switch {
	case n < 2:
		return months.SideSingle
	case i == 0:
		return months.SideLeft
	default:
		return months.SideRight
	}
}

func buildState(id string, e *calendar.Engine) stateResponse {
	loc := e.Location()
	locale := e.Locale()
	first := e.FirstDayOfWeek()
	weekdays := grid.WeekdayNames(locale, first)

	displayed := e.DisplayedMonths()
	panes := make([]paneDTO, 0, len(displayed))
	for i, d := range displayed {
		weeks := grid.Build(d, first, loc)
		rows := make([][]dayDTO, 0, len(weeks))
		for _, w := range weeks {
			row := make([]dayDTO, 0, len(w))
			for _, c := range w {
				day := e.Day(c.Date)
				row = append(row, dayDTO{
					Date:       string(c.Key),
					Day:        c.Date.Day(),
					InMonth:    c.InMonth,
					Disabled:   day.Disabled,
					Today:      day.Today,
					Selected:   day.Selected,
					RangeStart: day.RangeStart,
					RangeEnd:   day.RangeEnd,
					InRange:    day.InRange,
					InPreview:  day.InPreview,
					Focused:    day.Focused && c.InMonth,
				})
			}
			rows = append(rows, row)
		}
		panes = append(panes, paneDTO{
			Side:     paneSide(i, len(displayed)),
			Month:    d.Month,
			Year:     d.Year,
			Title:    grid.Title(locale, d),
			Weekdays: weekdays,
			Weeks:    rows,
		})
	}

	p := e.Picker()
	picker := pickerDTO{Open: p.Open(), Kind: p.Kind.String(), Side: p.Side}
	switch p.Kind {
	case calendar.PickerMonth:
		for m := 0; m < 12; m++ {
			picker.Months = append(picker.Months, grid.MonthName(locale, m))
		}
	case calendar.PickerYear:
		picker.Years = e.YearPage()
	}

	return stateResponse{
		Session:   id,
		Mode:      e.Mode().String(),
		Phase:     e.Phase().String(),
		Value:     string(e.Value()),
		StartDate: string(e.StartDate()),
		EndDate:   string(e.EndDate()),
		HoverDate: string(e.HoverDate()),
		FocusDate: string(e.FocusDate()),
		Today:     string(e.Today()),
		AutoDual:  e.AutoDual(),
		Panes:     panes,
		Picker:    picker,
		Events:    []eventDTO{},
	}
}
