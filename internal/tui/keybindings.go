package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the home screen key bindings.
type keyMap struct {
	Open      key.Binding
	Search    key.Binding
	Capture   key.Binding
	Library   key.Binding
	Delete    key.Binding
	Clear     key.Binding
	Incognito key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search again"),
		),
		Search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "new search"),
		),
		Capture: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "camera"),
		),
		Library: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "library"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Incognito: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "incognito"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown under the history list.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Search, k.Capture, k.Library, k.Delete, k.Clear, k.Incognito}
}

// setAvailability disables bindings for features that are not configured and
// list actions that need a selected entry.
func (k *keyMap) setAvailability(hasEntries, cameraAvailable bool) {
	k.Open.SetEnabled(hasEntries)
	k.Delete.SetEnabled(hasEntries)
	k.Clear.SetEnabled(hasEntries)
	k.Capture.SetEnabled(cameraAvailable)
}
