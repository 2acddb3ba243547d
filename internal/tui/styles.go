package tui

import "github.com/charmbracelet/lipgloss"

// Styles controls how day cells and chrome are drawn.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Day       lipgloss.Style
	Outside   lipgloss.Style
	Disabled  lipgloss.Style
	Today     lipgloss.Style
	Selected  lipgloss.Style
	InRange   lipgloss.Style
	InPreview lipgloss.Style
	Focused   lipgloss.Style
	Pane      lipgloss.Style
	Picker    lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the 256-colour palette used by `rangecal pick`.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
		Day:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Outside:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Disabled:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		Today:     lipgloss.NewStyle().Underline(true),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0")).Bold(true),
		InRange:   lipgloss.NewStyle().Background(lipgloss.Color("60")).Foreground(lipgloss.Color("15")),
		InPreview: lipgloss.NewStyle().Background(lipgloss.Color("237")).Foreground(lipgloss.Color("15")),
		Focused:   lipgloss.NewStyle().Reverse(true),
		Pane:      lipgloss.NewStyle().Padding(0, 2),
		Picker:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
