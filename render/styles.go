package render

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("36")
	muted  = lipgloss.Color("240")
	warn   = lipgloss.Color("214")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle   = lipgloss.NewStyle().Foreground(muted)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(warn).Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	focusedBoxStyle = boxStyle.BorderForeground(accent)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			Width(28)

	highlightCardStyle = cardStyle.
				Border(lipgloss.ThickBorder()).
				BorderForeground(accent)

	fadedCardStyle = cardStyle.Foreground(muted)

	cursorCardStyle = cardStyle.BorderForeground(warn)

	buttonStyle         = lipgloss.NewStyle().Bold(true).Foreground(accent)
	disabledButtonStyle = lipgloss.NewStyle().Foreground(muted).Strikethrough(true)
)

func frame(content string, width int, focused bool) string {
	st := boxStyle
	if focused {
		st = focusedBoxStyle
	}
	if width > 4 {
		st = st.MaxWidth(width)
	}
	return st.Render(content)
}
