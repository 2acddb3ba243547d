// Package tui hosts the calendar engine in a terminal via bubbletea.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rangecal/internal/calendar"
	"rangecal/internal/grid"
	"rangecal/internal/months"
)

// CellWidth converts terminal columns into the pixel widths the responsive
// evaluator expects.
const CellWidth = 8

// Model is a bubbletea model wrapping one engine.
type Model struct {
	engine *calendar.Engine
	styles Styles

	width int

	// pickerCursor indexes the month (0-11) or the year page entry (0-11)
	// while a picker is open.
	pickerCursor int

	// lastEvent is shared across Model copies; the engine listener writes it.
	lastEvent *string
	quitting  bool
	accepted  bool
}

// New wraps e.
func New(e *calendar.Engine) Model {
	last := new(string)
	e.Subscribe(func(ev calendar.Event) {
		*last = ev.Name() + " " + ev.Describe()
	})
	return Model{engine: e, styles: DefaultStyles(), lastEvent: last}
}

// Engine returns the wrapped engine.
func (m Model) Engine() *calendar.Engine { return m.engine }

// Accepted reports whether the user finished with q rather than aborting
// with ctrl+c.
func (m Model) Accepted() bool { return m.accepted }

// LastEvent returns the most recent engine event as "name detail".
func (m Model) LastEvent() string { return *m.lastEvent }

// Result returns the selection: a date in single mode, "start:end" in range
// mode (end may be empty), or "" when nothing is selected.
func (m Model) Result() string {
	e := m.engine
	if e.Mode() == calendar.ModeRange {
		if e.StartDate().IsZero() {
			return ""
		}
		return string(e.StartDate()) + ":" + string(e.EndDate())
	}
	return string(e.Value())
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.engine.EvaluateWidth(msg.Width * CellWidth)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.engine
	key := msg.String()

	switch key {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "q":
		m.quitting = true
		m.accepted = true
		return m, tea.Quit
	}

	if p := e.Picker(); p.Open() {
		m.pickerKey(p, key)
		return m, nil
	}

	side := m.primarySide()
	switch key {
	case "left":
		e.Key("ArrowLeft")
	case "right":
		e.Key("ArrowRight")
	case "up":
		e.Key("ArrowUp")
	case "down":
		e.Key("ArrowDown")
	case "pgup":
		e.Key("PageUp")
	case "pgdown":
		e.Key("PageDown")
	case "home":
		e.Key("Home")
	case "end":
		e.Key("End")
	case "enter", " ":
		e.Key("Enter")
	case "esc":
		e.Key("Escape")
	case "[":
		e.Previous(side)
	case "]":
		e.Next(side)
	case "m":
		m.pickerCursor = e.DisplayedMonths()[0].Month
		e.OpenMonthPicker(side)
	case "y":
		e.OpenYearPicker(side)
		m.pickerCursor = indexOf(e.YearPage(), e.DisplayedMonths()[0].Year)
	case "c":
		e.Clear()
	}
	return m, nil
}

func (m *Model) pickerKey(p calendar.Picker, key string) {
	e := m.engine
	switch key {
	case "esc":
		e.ClosePicker()
		return
	case "left":
		m.pickerCursor--
	case "right":
		m.pickerCursor++
	case "up":
		m.pickerCursor -= 3
	case "down":
		m.pickerCursor += 3
	case "pgup":
		if p.Kind == calendar.PickerYear {
			e.ShiftYearPage(-1)
		}
	case "pgdown":
		if p.Kind == calendar.PickerYear {
			e.ShiftYearPage(1)
		}
	case "enter", " ":
		if p.Kind == calendar.PickerMonth {
			e.SelectPickerMonth(m.pickerCursor)
		} else {
			e.SelectPickerYear(e.YearPage()[m.pickerCursor])
		}
		return
	}
	m.pickerCursor = ((m.pickerCursor % 12) + 12) % 12
}

// primarySide is the side that [, ], m and y act on.
func (m Model) primarySide() months.Side {
	if len(m.engine.DisplayedMonths()) > 1 {
		return months.SideLeft
	}
	return months.SideSingle
}

func indexOf(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	e := m.engine
	panes := make([]string, 0, 2)
	for _, d := range e.DisplayedMonths() {
		panes = append(panes, m.styles.Pane.Render(m.renderPane(d)))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
	b.WriteString("\n")
	if p := e.Picker(); p.Open() {
		b.WriteString(m.styles.Picker.Render(m.renderPicker(p)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Status.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("arrows move · enter select · [ ] month · m/y pickers · c clear · esc close · q done"))
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

func (m Model) renderPane(d months.Descriptor) string {
	e := m.engine
	first := e.FirstDayOfWeek()
	lines := []string{
		m.styles.Title.Render(grid.Title(e.Locale(), d)),
		m.styles.Header.Render(joinCells(grid.WeekdayNames(e.Locale(), first))),
	}
	for _, w := range grid.Build(d, first, e.Location()) {
		cells := make([]string, 0, 7)
		for _, c := range w {
			cells = append(cells, m.renderCell(c))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func joinCells(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = lipgloss.PlaceHorizontal(2, lipgloss.Right, n)
	}
	return strings.Join(out, " ")
}

func (m Model) renderCell(c grid.Cell) string {
	text := fmt.Sprintf("%2d", c.Date.Day())
	if !c.InMonth {
		return m.styles.Outside.Render(text)
	}
	day := m.engine.Day(c.Date)
	style := m.styles.Day
	switch {
	case day.Disabled:
		style = m.styles.Disabled
	case day.Selected || day.RangeStart || day.RangeEnd:
		style = m.styles.Selected
	case day.InRange:
		style = m.styles.InRange
	case day.InPreview:
		style = m.styles.InPreview
	}
	if day.Today {
		style = style.Inherit(m.styles.Today)
	}
	if day.Focused {
		style = style.Inherit(m.styles.Focused)
	}
	return style.Render(text)
}

func (m Model) renderPicker(p calendar.Picker) string {
	e := m.engine
	items := make([]string, 12)
	if p.Kind == calendar.PickerMonth {
		for i := range items {
			items[i] = grid.MonthName(e.Locale(), i)
		}
	} else {
		for i, y := range e.YearPage() {
			items[i] = fmt.Sprint(y)
		}
	}
	rows := make([]string, 0, 4)
	for r := 0; r < 4; r++ {
		cells := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			cell := lipgloss.PlaceHorizontal(11, lipgloss.Center, items[i])
			if i == m.pickerCursor {
				cell = m.styles.Focused.Render(cell)
			}
			cells = append(cells, cell)
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}

func (m Model) status() string {
	e := m.engine
	var sel string
	if e.Mode() == calendar.ModeRange {
		sel = fmt.Sprintf("range %s..%s", orDash(string(e.StartDate())), orDash(string(e.EndDate())))
	} else {
		sel = "date " + orDash(string(e.Value()))
	}
	line := fmt.Sprintf("%s · focus %s · %s", sel, e.FocusDate(), e.Phase())
	if *m.lastEvent != "" {
		line += " · " + *m.lastEvent
	}
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
