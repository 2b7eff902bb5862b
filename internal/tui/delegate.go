package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/lens/internal/core/history"
)

// EntryItem wraps a history entry for the list component.
type EntryItem struct {
	Entry history.Entry
}

// FilterValue returns the value used for filtering.
func (i EntryItem) FilterValue() string {
	return i.Entry.Text
}

// EntryDelegate handles rendering of history entries in the list.
type EntryDelegate struct {
	Styles EntryDelegateStyles
	Now    func() time.Time
}

// EntryDelegateStyles defines the styles for the delegate.
type EntryDelegateStyles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Text     lipgloss.Style
	Image    lipgloss.Style
	Detail   lipgloss.Style
}

// DefaultEntryDelegateStyles returns the default styles.
func DefaultEntryDelegateStyles() EntryDelegateStyles {
	return EntryDelegateStyles{
		Normal:   normalStyle,
		Selected: selectedStyle,
		Text:     textKindStyle,
		Image:    imageKindStyle,
		Detail:   detailStyle,
	}
}

// NewEntryDelegate creates a new entry delegate with default styles.
func NewEntryDelegate() EntryDelegate {
	return EntryDelegate{
		Styles: DefaultEntryDelegateStyles(),
		Now:    time.Now,
	}
}

// Height returns the height of each item.
func (d EntryDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d EntryDelegate) Spacing() int {
	return 1
}

// Update handles item updates.
func (d EntryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders a single item.
func (d EntryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entryItem, ok := item.(EntryItem)
	if !ok {
		return
	}

	e := entryItem.Entry
	isSelected := index == m.Index()

	icon := d.Styles.Text.Render(iconText)
	if e.IsImage() {
		icon = d.Styles.Image.Render(iconImage)
	}

	detail := relativeTime(d.Now(), e.Timestamp)
	if e.IsImage() && e.ImageRef != "" {
		detail = fmt.Sprintf("%s %s %s", detail, iconDot, filepath.Base(e.ImageRef))
	}

	var titleStyle lipgloss.Style
	prefix := "  "
	if isSelected {
		titleStyle = d.Styles.Selected
		prefix = selectedBorderStyle.Render("┃") + " "
	} else {
		titleStyle = d.Styles.Normal
	}

	_, _ = fmt.Fprintf(w, "%s%s %s\n", prefix, icon, titleStyle.Render(e.Text))
	_, _ = fmt.Fprintf(w, "%s  %s", prefix, d.Styles.Detail.Render(detail))
}

// relativeTime formats the time since t in the largest whole unit.
func relativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hr ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
