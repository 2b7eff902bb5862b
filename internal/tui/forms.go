package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/lens/internal/capture"
	"github.com/hay-kot/lens/internal/core/validate"
	"github.com/hay-kot/lens/internal/styles"
)

// SearchForm wraps a huh.Form asking for a query.
type SearchForm struct {
	form  *huh.Form
	query string
}

// NewSearchForm creates a search form prefilled with initial.
func NewSearchForm(initial string) *SearchForm {
	f := &SearchForm{query: initial}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search").
				Placeholder("Search or type a URL").
				Value(&f.query).
				Validate(validate.Query),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *SearchForm) Form() *huh.Form {
	return f.form
}

// Query returns the entered query. Only valid once the form is completed.
func (f *SearchForm) Query() string {
	return f.query
}

// LibraryForm wraps a huh.Form choosing an image from the photo library.
type LibraryForm struct {
	form     *huh.Form
	images   []capture.Image
	selected int
}

// NewLibraryForm creates a library picker for images. root is used to
// shorten the displayed paths.
func NewLibraryForm(images []capture.Image, root string) *LibraryForm {
	f := &LibraryForm{images: images}

	options := make([]huh.Option[int], len(images))
	for i, img := range images {
		label := img.Path
		if rel, err := filepath.Rel(root, img.Path); err == nil {
			label = rel
		}
		options[i] = huh.NewOption(fmt.Sprintf("%s  %s", label, img.CapturedAt.Format("2006-01-02 15:04")), i)
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Photo library").
				Options(options...).
				Value(&f.selected).
				Filtering(true).
				Height(12),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *LibraryForm) Form() *huh.Form {
	return f.form
}

// Image returns the chosen image. Only valid once the form is completed.
func (f *LibraryForm) Image() capture.Image {
	return f.images[f.selected]
}
