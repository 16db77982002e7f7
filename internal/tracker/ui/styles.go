package ui

import "github.com/charmbracelet/lipgloss"

// Styles is the active lipgloss theme. Both palettes exist because the
// color-mode toggle is a durable preference carried over from the tracker's
// dark/light theming.
type Styles struct {
	Title      lipgloss.Style
	Header     lipgloss.Style
	Label      lipgloss.Style
	Error      lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	StatusBar  lipgloss.Style
	StatusRole lipgloss.Style
	Completed  lipgloss.Style
	Box        lipgloss.Style
}

func newStyles(colorMode string) Styles {
	var (
		accent lipgloss.Color
		text   lipgloss.Color
		dim    lipgloss.Color
		barBg  lipgloss.Color
	)

	switch colorMode {
	case "light":
		accent = lipgloss.Color("25") // deep blue
		text = lipgloss.Color("235")
		dim = lipgloss.Color("245")
		barBg = lipgloss.Color("254")
	default: // dark
		accent = lipgloss.Color("39") // bright blue
		text = lipgloss.Color("252")
		dim = lipgloss.Color("243")
		barBg = lipgloss.Color("236")
	}

	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Header:     lipgloss.NewStyle().Bold(true).Foreground(text),
		Label:      lipgloss.NewStyle().Foreground(dim),
		Error:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted:      lipgloss.NewStyle().Foreground(dim),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		StatusBar:  lipgloss.NewStyle().Background(barBg).Foreground(text).Padding(0, 1),
		StatusRole: lipgloss.NewStyle().Background(barBg).Foreground(accent).Bold(true),
		Completed:  lipgloss.NewStyle().Strikethrough(true).Foreground(dim),
		Box:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2),
	}
}
