// Package tui holds the Bubble Tea models and lipgloss styles of npctl.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and pre-built styles.
type Theme struct {
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Warn   lipgloss.Color
	Error  lipgloss.Color
	Border lipgloss.Color

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	KeyIdle   lipgloss.Style
	KeyDown   lipgloss.Style
	KeyEdge   lipgloss.Style
	ErrorText lipgloss.Style
	Box       lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
}

// DefaultTheme is the dark palette.
func DefaultTheme() *Theme {
	t := &Theme{
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#909090"),
		Accent: lipgloss.Color("#4ade80"),
		Warn:   lipgloss.Color("#facc15"),
		Error:  lipgloss.Color("#f87171"),
		Border: lipgloss.Color("#333333"),
	}
	key := lipgloss.NewStyle().Width(7).Align(lipgloss.Center).Border(lipgloss.RoundedBorder())

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	t.KeyIdle = key.BorderForeground(t.Border).Foreground(t.Muted)
	t.KeyDown = key.BorderForeground(t.Accent).Foreground(t.Accent).Bold(true)
	t.KeyEdge = key.BorderForeground(t.Warn).Foreground(t.Warn)
	t.ErrorText = lipgloss.NewStyle().Foreground(t.Error)
	t.Box = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.Header = lipgloss.NewStyle().Bold(true).Foreground(t.Accent).Padding(0, 1)
	t.Cell = lipgloss.NewStyle().Padding(0, 1)
	return t
}
