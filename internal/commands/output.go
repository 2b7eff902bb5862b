package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/hay-kot/lens/internal/capture"
	"github.com/hay-kot/lens/internal/lens"
	"github.com/hay-kot/lens/internal/results"
	"github.com/hay-kot/lens/internal/search"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutcome prints search results as JSON or rendered markdown.
func writeOutcome(w io.Writer, out lens.Outcome, asJSON bool) error {
	if asJSON {
		if out.Image != nil {
			return writeJSON(w, out.Image)
		}
		return writeJSON(w, out.Text)
	}

	md := out.Markdown()
	width := terminalWidth(w)
	if width == 0 {
		_, err := fmt.Fprint(w, md)
		return err
	}

	_, err := fmt.Fprintln(w, results.Render(md, width))
	return err
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 80
	}
	return width
}

// searchError adds a hint to errors the user can fix through configuration.
func searchError(err error) error {
	switch {
	case errors.Is(err, search.ErrNotConfigured):
		return fmt.Errorf("%w (or set LENS_SEARCH_API_KEY and LENS_SEARCH_ENGINE_ID)", err)
	case errors.Is(err, capture.ErrNoCamera):
		return fmt.Errorf("%w: set capture.command, or use --library / --file", err)
	default:
		return err
	}
}
