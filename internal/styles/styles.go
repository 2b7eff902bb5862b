// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorPurple = lipgloss.Color("#bb9af7")
	ColorRed    = lipgloss.Color("#f7768e")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
	ColorDark   = lipgloss.Color("#1a1b26")
)

// Banner ASCII art for the header.
const Banner = `
 ╦  ╔═╗╔╗╔╔═╗
 ║  ║╣ ║║║╚═╗
 ╩═╝╚═╝╝╚╝╚═╝`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// IncognitoBadgeStyle marks the incognito state in headers.
var IncognitoBadgeStyle = lipgloss.NewStyle().
	Background(ColorPurple).
	Foreground(ColorDark).
	Bold(true).
	Padding(0, 1)

// MutedStyle styles secondary text such as timestamps.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns the huh theme used by every prompt.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorBlue)
	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorRed)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorRed)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorBlue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorGreen)
	t.Focused.Option = t.Focused.Option.Foreground(ColorWhite)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorBlue)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorBlue)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(ColorGray)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorBlue).Foreground(ColorDark)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorWhite)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}
