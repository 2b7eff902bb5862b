package search

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"
)

// maxVisualMatches caps the number of image hits surfaced as visual matches.
const maxVisualMatches = 3

// ImageResultSet is the response to an image search: the labels derived from
// the image, the text results for those labels and any visually similar images.
type ImageResultSet struct {
	ResultSet
	ImageRef      string   `json:"imageRef"`
	Labels        []string `json:"labels"`
	VisualMatches []Result `json:"visualMatches"`
}

// Labeler derives search labels from an image.
type Labeler interface {
	Labels(ctx context.Context, imageRef string) ([]string, error)
}

// FilenameLabeler derives labels from the words in an image's file name,
// falling back to Defaults when the name carries no usable words.
type FilenameLabeler struct {
	Defaults []string
}

// noiseWords are file name tokens produced by cameras and tools rather than by people.
var noiseWords = map[string]bool{
	"img": true, "image": true, "dsc": true, "dcim": true, "pxl": true,
	"photo": true, "capture": true, "screenshot": true, "edited": true,
	"copy": true, "jpg": true, "jpeg": true, "png": true,
}

// Labels implements Labeler.
func (l FilenameLabeler) Labels(_ context.Context, imageRef string) ([]string, error) {
	base := filepath.Base(imageRef)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	words := strings.FieldsFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	seen := make(map[string]bool, len(words))
	labels := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if len(w) < 3 || noiseWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		labels = append(labels, w)
	}

	if len(labels) == 0 {
		return append([]string(nil), l.Defaults...), nil
	}
	return labels, nil
}

// SearchImage labels the image and searches for the labels. Result items that
// carry an image are also returned as visual matches.
func (c *Client) SearchImage(ctx context.Context, imageRef string, labeler Labeler) (ImageResultSet, error) {
	labels, err := labeler.Labels(ctx, imageRef)
	if err != nil {
		return ImageResultSet{}, err
	}
	if len(labels) == 0 {
		return ImageResultSet{}, ErrEmptyQuery
	}

	rs, err := c.Search(ctx, strings.Join(labels, " "))
	if err != nil {
		return ImageResultSet{}, err
	}

	out := ImageResultSet{
		ResultSet: rs,
		ImageRef:  imageRef,
		Labels:    labels,
	}
	for _, r := range rs.Items {
		if r.ImageURL == "" {
			continue
		}
		out.VisualMatches = append(out.VisualMatches, r)
		if len(out.VisualMatches) == maxVisualMatches {
			break
		}
	}

	return out, nil
}
