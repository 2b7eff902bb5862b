// Package tui implements the Bubble Tea home screen for lens.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/lens/internal/styles"
)

// Styles used for rendering the TUI.
var (
	// Title style for the list header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	// Selected item style.
	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	// Normal item style (no color, uses terminal default).
	normalStyle = lipgloss.NewStyle()

	// Kind badge styles.
	textKindStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	imageKindStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	// Secondary detail such as timestamps and image paths.
	detailStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// Selected border style for left accent bar.
	selectedBorderStyle = lipgloss.NewStyle().
				Foreground(styles.ColorBlue)

	// Empty list hint.
	emptyStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			Italic(true).
			PaddingLeft(2)

	// Status line styles.
	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)

	bannerStyle = styles.BannerStyle.
			PaddingLeft(1).
			PaddingBottom(1)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("#3b4261")).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(styles.ColorDark).
					Bold(true)
)

// Icons and symbols.
const (
	iconDot   = "•"
	iconText  = "⌕"
	iconImage = "▣"
)
