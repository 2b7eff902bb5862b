package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/lens/internal/lens"
	"github.com/hay-kot/lens/internal/results"
)

// ResultsView shows a rendered result set in a scrollable viewport.
type ResultsView struct {
	viewport viewport.Model
	markdown string
	title    string
}

// NewResultsView creates a results view for out sized to width x height.
func NewResultsView(out lens.Outcome, width, height int) ResultsView {
	title := "Results"
	switch {
	case out.Image != nil:
		title = fmt.Sprintf("Image search %s %s", iconDot, out.Image.Query)
	case out.Text != nil:
		title = fmt.Sprintf("Results %s %s", iconDot, out.Text.Query)
	}

	v := ResultsView{
		viewport: viewport.New(width, max(height-2, 1)),
		markdown: out.Markdown(),
		title:    title,
	}
	v.render(width)
	return v
}

func (v *ResultsView) render(width int) {
	v.viewport.SetContent(results.Render(v.markdown, max(width-2, 20)))
}

// SetSize resizes the view and re-renders the content for the new width.
func (v *ResultsView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-2, 1)
	v.render(width)
}

// Update scrolls the viewport.
func (v ResultsView) Update(msg tea.Msg) (ResultsView, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the title, the viewport and a help line.
func (v ResultsView) View() string {
	scroll := ""
	if v.viewport.TotalLineCount() > v.viewport.VisibleLineCount() {
		scroll = detailStyle.Render(fmt.Sprintf(" (%.0f%%)", v.viewport.ScrollPercent()*100))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(v.title)+scroll,
		v.viewport.View(),
		statusStyle.Render("↑/↓ scroll  esc back  q quit"),
	)
}
