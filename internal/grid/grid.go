// Package grid lays out month panes as week rows for renderers.
package grid

import (
	"fmt"
	"strings"
	"time"

	"rangecal/internal/dates"
	"rangecal/internal/months"
)

// Cell is one day slot in a week row. Slots before the first or after the
// last day of the month carry the adjacent month's dates with InMonth false.
type Cell struct {
	Date    time.Time
	Key     dates.Key
	InMonth bool
}

// Week is seven consecutive cells starting on the configured first weekday.
type Week [7]Cell

// Build returns the week rows covering d. Only as many rows as the month
// needs are produced (4 to 6).
func Build(d months.Descriptor, firstDay time.Weekday, loc *time.Location) []Week {
	first := d.First(loc)
	offset := (int(first.Weekday()) - int(firstDay) + 7) % 7
	days := d.Days()
	rows := (offset + days + 6) / 7

	start := first.AddDate(0, 0, -offset)
	weeks := make([]Week, rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < 7; col++ {
			date := start.AddDate(0, 0, row*7+col)
			weeks[row][col] = Cell{
				Date:    date,
				Key:     dates.Format(date),
				InMonth: d.Contains(date),
			}
		}
	}
	return weeks
}

type localeTable struct {
	weekdays [7]string // Sunday first
	months   [12]string
	title    func(month string, year int) string
}

var tables = map[string]localeTable{
	"en": {
		weekdays: [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"},
		months:   [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		title:    func(m string, y int) string { return fmt.Sprintf("%s %d", m, y) },
	},
	"ko": {
		weekdays: [7]string{"일", "월", "화", "수", "목", "금", "토"},
		months:   [12]string{"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
		title:    func(m string, y int) string { return fmt.Sprintf("%d년 %s", y, m) },
	},
	"ja": {
		weekdays: [7]string{"日", "月", "火", "水", "木", "金", "土"},
		months:   [12]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"},
		title:    func(m string, y int) string { return fmt.Sprintf("%d年%s", y, m) },
	},
	"de": {
		weekdays: [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		months:   [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		title:    func(m string, y int) string { return fmt.Sprintf("%s %d", m, y) },
	},
	"fr": {
		weekdays: [7]string{"di", "lu", "ma", "me", "je", "ve", "sa"},
		months:   [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		title:    func(m string, y int) string { return fmt.Sprintf("%s %d", m, y) },
	},
	"es": {
		weekdays: [7]string{"do", "lu", "ma", "mi", "ju", "vi", "sá"},
		months:   [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		title:    func(m string, y int) string { return fmt.Sprintf("%s de %d", m, y) },
	},
}

// lookup resolves "ko-KR" or "ko_KR" to the "ko" table, falling back to en.
func lookup(locale string) localeTable {
	lang := strings.ToLower(locale)
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables["en"]
}

// WeekdayNames returns the short weekday header starting at firstDay.
func WeekdayNames(locale string, firstDay time.Weekday) []string {
	t := lookup(locale)
	out := make([]string, 7)
	for i := range out {
		out[i] = t.weekdays[(int(firstDay)+i)%7]
	}
	return out
}

// MonthName returns the name of a 0-based month.
func MonthName(locale string, month int) string {
	m := ((month % 12) + 12) % 12
	return lookup(locale).months[m]
}

// Title renders the pane heading, e.g. "June 2024" or "2024년 6월".
func Title(locale string, d months.Descriptor) string {
	t := lookup(locale)
	return t.title(t.months[d.Normalize().Month], d.Year)
}
