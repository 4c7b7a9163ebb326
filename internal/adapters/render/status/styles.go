package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	account  lipgloss.Style
	detail   lipgloss.Style
	active   lipgloss.Style
	pending  lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	metaKey  lipgloss.Style
	metaVal  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		pending: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
		metaKey: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		metaVal: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
