package capture

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Picker chooses one image from a list of candidates. Implementations return
// ErrCanceled when the user backs out.
type Picker interface {
	Pick(ctx context.Context, images []Image) (Image, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context, images []Image) (Image, error)

// Pick implements Picker.
func (f PickerFunc) Pick(ctx context.Context, images []Image) (Image, error) {
	return f(ctx, images)
}

// Library lists images under a directory matching glob patterns.
type Library struct {
	root     string
	fsys     fs.FS
	patterns []string
}

// NewLibrary creates a Library rooted at dir.
func NewLibrary(dir string, patterns []string) *Library {
	return &Library{root: dir, fsys: os.DirFS(dir), patterns: patterns}
}

// List returns the matching images, newest first.
func (l *Library) List() ([]Image, error) {
	seen := make(map[string]bool)
	var images []Image

	for _, pattern := range l.patterns {
		matches, err := doublestar.Glob(l.fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true

			info, err := fs.Stat(l.fsys, m)
			if err != nil {
				continue
			}

			images = append(images, Image{
				Path:       filepath.Join(l.root, filepath.FromSlash(m)),
				Source:     SourceLibrary,
				CapturedAt: info.ModTime(),
			})
		}
	}

	slices.SortStableFunc(images, func(a, b Image) int {
		if c := b.CapturedAt.Compare(a.CapturedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	return images, nil
}

// Pick lists the library and lets picker choose an image.
func (l *Library) Pick(ctx context.Context, picker Picker) (Image, error) {
	images, err := l.List()
	if err != nil {
		return Image{}, err
	}
	if len(images) == 0 {
		return Image{}, ErrNoImages
	}
	return picker.Pick(ctx, images)
}
