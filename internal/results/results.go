// Package results renders search result sets as markdown for the terminal.
package results

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/lens/internal/search"
)

// Markdown formats a text search result set.
func Markdown(rs search.ResultSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(rs.Query))
	writeSummary(&b, rs)
	writeItems(&b, rs.Items)
	return b.String()
}

// ImageMarkdown formats an image search result set.
func ImageMarkdown(rs search.ImageResultSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Image search\n\n")
	fmt.Fprintf(&b, "`%s`\n\n", rs.ImageRef)
	fmt.Fprintf(&b, "**Labels:** %s\n\n", escape(strings.Join(rs.Labels, ", ")))

	if len(rs.VisualMatches) > 0 {
		b.WriteString("## Visual matches\n\n")
		for _, m := range rs.VisualMatches {
			fmt.Fprintf(&b, "- [%s](%s)\n", escape(m.Title), m.ImageURL)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Results\n\n")
	writeSummary(&b, rs.ResultSet)
	writeItems(&b, rs.Items)
	return b.String()
}

func writeSummary(b *strings.Builder, rs search.ResultSet) {
	fmt.Fprintf(b, "_About %d results (%.2f seconds)_\n\n", rs.TotalResults, rs.SearchTime.Seconds())
}

func writeItems(b *strings.Builder, items []search.Result) {
	if len(items) == 0 {
		b.WriteString("No results found.\n")
		return
	}

	for i, it := range items {
		fmt.Fprintf(b, "%d. **[%s](%s)**", i+1, escape(it.Title), it.Link)
		if it.DisplayLink != "" {
			fmt.Fprintf(b, " _%s_", it.DisplayLink)
		}
		b.WriteString("\n")
		if it.Snippet != "" {
			fmt.Fprintf(b, "   %s\n", escape(oneLine(it.Snippet)))
		}
		b.WriteString("\n")
	}
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

func escape(s string) string {
	return mdEscaper.Replace(s)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Render renders markdown for a terminal of the given width. When rendering
// fails the markdown is returned unchanged.
func Render(md string, width int) string {
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md
	}

	content := strings.TrimSpace(out)
	content = stripLeadingDecorative(content)
	return stripTrailingDecorative(content)
}

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// isDecorativeLine reports whether a line holds only rule characters and
// spaces once ANSI codes are stripped.
func isDecorativeLine(line string) bool {
	stripped := strings.TrimSpace(ansiPattern.ReplaceAllString(line, ""))
	for _, r := range stripped {
		if r != '─' && r != '━' && r != '-' && r != '=' {
			return false
		}
	}
	return true
}

func stripLeadingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	start := 0
	for start < len(lines) && isDecorativeLine(lines[start]) {
		start++
	}
	return strings.Join(lines[start:], "\n")
}

func stripTrailingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	end := len(lines)
	for end > 0 && isDecorativeLine(lines[end-1]) {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
