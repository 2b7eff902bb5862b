package results

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/lens/internal/search"
)

func sampleSet() search.ResultSet {
	return search.ResultSet{
		Query:        "snow leopard",
		TotalResults: 2,
		SearchTime:   250 * time.Millisecond,
		Items: []search.Result{
			{Title: "Snow leopard", Link: "https://example.com/a", DisplayLink: "example.com", Snippet: "The snow\nleopard is a *big* cat."},
			{Title: "Panthera [uncia]", Link: "https://example.com/b"},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleSet())

	assert.True(t, strings.HasPrefix(md, "# snow leopard\n"))
	assert.Contains(t, md, "_About 2 results (0.25 seconds)_")
	assert.Contains(t, md, "1. **[Snow leopard](https://example.com/a)** _example.com_")
	assert.Contains(t, md, `The snow leopard is a \*big\* cat.`)
	assert.Contains(t, md, `2. **[Panthera \[uncia\]](https://example.com/b)**`)
}

func TestMarkdown_NoResults(t *testing.T) {
	md := Markdown(search.ResultSet{Query: "zzz"})
	assert.Contains(t, md, "No results found.")
}

func TestImageMarkdown(t *testing.T) {
	rs := search.ImageResultSet{
		ResultSet: sampleSet(),
		ImageRef:  "/photos/snow-leopard.jpg",
		Labels:    []string{"snow", "leopard"},
		VisualMatches: []search.Result{
			{Title: "Snow leopard", ImageURL: "https://img.example.com/1.jpg"},
		},
	}

	md := ImageMarkdown(rs)
	assert.Contains(t, md, "`/photos/snow-leopard.jpg`")
	assert.Contains(t, md, "**Labels:** snow, leopard")
	assert.Contains(t, md, "## Visual matches")
	assert.Contains(t, md, "- [Snow leopard](https://img.example.com/1.jpg)")
	assert.Contains(t, md, "## Results")
}

func TestImageMarkdown_NoVisualMatches(t *testing.T) {
	md := ImageMarkdown(search.ImageResultSet{ResultSet: sampleSet(), Labels: []string{"cat"}})
	assert.NotContains(t, md, "Visual matches")
}

func TestRender(t *testing.T) {
	out := Render(Markdown(sampleSet()), 60)
	assert.Contains(t, out, "leopard")
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestStripDecorative(t *testing.T) {
	in := "\x1b[38m────\x1b[0m\n   \ncontent\n  more\n────\n"
	out := stripTrailingDecorative(stripLeadingDecorative(in))
	assert.Equal(t, "content\n  more", out)

	assert.True(t, isDecorativeLine("  ━━━ "))
	assert.False(t, isDecorativeLine("- item"))
}
