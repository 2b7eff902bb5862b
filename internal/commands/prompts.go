package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/lens/internal/capture"
	"github.com/hay-kot/lens/internal/core/validate"
	"github.com/hay-kot/lens/internal/styles"
)

// errAborted is returned when the user backs out of a prompt.
var errAborted = errors.New("aborted")

func runForm(ctx context.Context, form *huh.Form) error {
	err := form.WithTheme(styles.FormTheme()).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return errAborted
	}
	return err
}

// promptQuery asks for a search query.
func promptQuery(ctx context.Context, initial string) (string, error) {
	query := initial
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search").
				Placeholder("Search or type a URL").
				Value(&query).
				Validate(validate.Query),
		),
	)

	if err := runForm(ctx, form); err != nil {
		return "", err
	}
	return query, nil
}

// confirm asks a yes/no question. The default answer is no.
func confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)

	if err := runForm(ctx, form); err != nil {
		return false, err
	}
	return ok, nil
}

// libraryPicker lets the user choose a photo with a filterable select.
type libraryPicker struct {
	root string
}

func (p libraryPicker) Pick(ctx context.Context, images []capture.Image) (capture.Image, error) {
	options := make([]huh.Option[int], len(images))
	for i, img := range images {
		label := img.Path
		if rel, err := filepath.Rel(p.root, img.Path); err == nil {
			label = rel
		}
		options[i] = huh.NewOption(fmt.Sprintf("%s  %s", label, img.CapturedAt.Format("2006-01-02 15:04")), i)
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Photo library").
				Options(options...).
				Value(&selected).
				Filtering(true).
				Height(12),
		),
	)

	if err := runForm(ctx, form); err != nil {
		if errors.Is(err, errAborted) {
			return capture.Image{}, capture.ErrCanceled
		}
		return capture.Image{}, err
	}
	return images[selected], nil
}
