package tui

import "github.com/charmbracelet/lipgloss"

// styles holds the lipgloss styles of the form.
type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	button   lipgloss.Style
	active   lipgloss.Style
	price    lipgloss.Style
	muted    lipgloss.Style
	errorMsg lipgloss.Style
	box      lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.Color("#C8102E")
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		label:    lipgloss.NewStyle().Width(14),
		focused:  lipgloss.NewStyle().Width(14).Bold(true).Foreground(accent),
		button:   lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.NormalBorder()),
		active:   lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.NormalBorder()).BorderForeground(accent).Bold(true),
		price:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E8B57")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		errorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginTop(1),
	}
}
