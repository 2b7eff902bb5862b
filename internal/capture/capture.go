// Package capture acquires images for image search: from a camera command,
// from the photo library, or from an explicit file.
package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrCanceled is returned when the user backs out of a capture or pick.
	ErrCanceled = errors.New("capture canceled")
	// ErrNoImages is returned when the library holds no matching images.
	ErrNoImages = errors.New("no images found in library")
	// ErrNoCamera is returned when no capture command is configured.
	ErrNoCamera = errors.New("no capture command configured")
)

// Source identifies where an image came from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceLibrary Source = "library"
	SourceFile    Source = "file"
)

// Image is an acquired image ready to be searched.
type Image struct {
	Path       string    `json:"path"`
	Source     Source    `json:"source"`
	CapturedAt time.Time `json:"capturedAt"`
}

// FromFile wraps an explicit file path after checking it is a readable regular file.
func FromFile(path string) (Image, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Image{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Image{}, fmt.Errorf("open image: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Image{}, fmt.Errorf("%s is not a regular file", path)
	}

	return Image{Path: abs, Source: SourceFile, CapturedAt: info.ModTime()}, nil
}
