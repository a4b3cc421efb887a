package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme contains all configurable visual styles for a run.
type Theme struct {
	// Header
	Title     lipgloss.Style
	HUDLabel  lipgloss.Style
	HUDValue  lipgloss.Style
	Separator lipgloss.Style

	// Vitals
	HP     lipgloss.Style
	HPLow  lipgloss.Style
	Block  lipgloss.Style
	Energy lipgloss.Style
	Gold   lipgloss.Style

	// Cards and choices
	Card       lipgloss.Style
	CardActive lipgloss.Style
	CardDim    lipgloss.Style
	CardText   lipgloss.Style
	Item       lipgloss.Style
	ItemActive lipgloss.Style

	// Enemy panel
	Enemy  lipgloss.Style
	Intent lipgloss.Style

	// Messages
	Toast   lipgloss.Style
	Error   lipgloss.Style
	Victory lipgloss.Style
	Defeat  lipgloss.Style
	Help    lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(18).
		Padding(0, 1)

	return Theme{
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		HP:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		HPLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Block:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Energy: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		Gold:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),

		Card:       card,
		CardActive: card.BorderForeground(lipgloss.Color("229")).Bold(true),
		CardDim:    card.Foreground(lipgloss.Color("241")),
		CardText:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Item:       lipgloss.NewStyle().PaddingLeft(2),
		ItemActive: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true).PaddingLeft(2),

		Enemy:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Intent: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),

		Toast:   lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Italic(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Victory: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Defeat:  lipgloss.NewStyle().Foreground(lipgloss.Color("88")).Bold(true),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
