// Package lens ties search, capture, speech and history together. Every
// successful search is recorded in the history store; failed searches are not.
package lens

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lens/internal/capture"
	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/internal/core/history"
	"github.com/hay-kot/lens/internal/core/validate"
	"github.com/hay-kot/lens/internal/results"
	"github.com/hay-kot/lens/internal/search"
	"github.com/hay-kot/lens/internal/speech"
	"github.com/hay-kot/lens/pkg/executil"
)

// Outcome is the result of a text or image search. Exactly one of Text and
// Image is set.
type Outcome struct {
	Entry history.Entry // zero when the entry was not recorded
	Text  *search.ResultSet
	Image *search.ImageResultSet
}

// Markdown renders the outcome as markdown.
func (o Outcome) Markdown() string {
	if o.Image != nil {
		return results.ImageMarkdown(*o.Image)
	}
	if o.Text != nil {
		return results.Markdown(*o.Text)
	}
	return ""
}

// Service orchestrates lens operations.
type Service struct {
	history *history.Store
	search  *search.Client
	camera  *capture.Camera
	library *capture.Library
	speech  *speech.Recognizer
	labeler search.Labeler
	log     zerolog.Logger
}

// New creates a new Service.
func New(
	hist *history.Store,
	client *search.Client,
	cfg *config.Config,
	exec executil.Executor,
	log zerolog.Logger,
) *Service {
	return &Service{
		history: hist,
		search:  client,
		camera:  capture.NewCamera(exec, cfg.Capture.Command, cfg.CaptureDir(), log.With().Str("component", "camera").Logger()),
		library: capture.NewLibrary(cfg.Capture.LibraryDir, cfg.Capture.LibraryPatterns),
		speech:  speech.NewRecognizer(exec, cfg.Speech.Command, log.With().Str("component", "speech").Logger()),
		labeler: search.FilenameLabeler{Defaults: cfg.Capture.DefaultLabels},
		log:     log,
	}
}

// History returns the history store.
func (s *Service) History() *history.Store {
	return s.history
}

// Search runs a text search and records the query on success.
func (s *Service) Search(ctx context.Context, query string) (Outcome, error) {
	if err := validate.Query(query); err != nil {
		return Outcome{}, err
	}

	rs, err := s.search.Search(ctx, query)
	if err != nil {
		return Outcome{}, fmt.Errorf("search %q: %w", strings.TrimSpace(query), err)
	}

	out := Outcome{Text: &rs}
	if e, ok := s.history.Add(rs.Query, history.KindText, ""); ok {
		out.Entry = e
	}

	s.log.Info().Str("query", rs.Query).Int("results", len(rs.Items)).Msg("text search")
	return out, nil
}

// SearchImage runs an image search and records the derived labels on success.
func (s *Service) SearchImage(ctx context.Context, img capture.Image) (Outcome, error) {
	rs, err := s.search.SearchImage(ctx, img.Path, s.labeler)
	if err != nil {
		return Outcome{}, fmt.Errorf("image search: %w", err)
	}

	out := Outcome{Image: &rs}
	if e, ok := s.history.Add(strings.Join(rs.Labels, " "), history.KindImage, img.Path); ok {
		out.Entry = e
	}

	s.log.Info().
		Str("image", img.Path).
		Str("source", string(img.Source)).
		Strs("labels", rs.Labels).
		Msg("image search")
	return out, nil
}

// Rerun repeats the search behind a history entry. Image entries whose file
// is gone fall back to a text search of the entry text.
func (s *Service) Rerun(ctx context.Context, e history.Entry) (Outcome, error) {
	if e.IsImage() && e.ImageRef != "" {
		if _, err := os.Stat(e.ImageRef); err == nil {
			return s.SearchImage(ctx, capture.Image{Path: e.ImageRef, Source: capture.SourceFile, CapturedAt: e.Timestamp})
		}
		s.log.Debug().Str("image", e.ImageRef).Msg("image missing, repeating as text search")
	}
	return s.Search(ctx, e.Text)
}

// CameraAvailable reports whether a capture command is configured.
func (s *Service) CameraAvailable() bool {
	return s.camera.Available()
}

// Capture takes a photo with the configured camera command.
func (s *Service) Capture(ctx context.Context) (capture.Image, error) {
	return s.camera.Capture(ctx)
}

// LibraryImages lists the photo library, newest first.
func (s *Service) LibraryImages() ([]capture.Image, error) {
	return s.library.List()
}

// PickFromLibrary lets picker choose an image from the photo library.
func (s *Service) PickFromLibrary(ctx context.Context, picker capture.Picker) (capture.Image, error) {
	return s.library.Pick(ctx, picker)
}

// SpeechAvailable reports whether a speech command is configured.
func (s *Service) SpeechAvailable() bool {
	return s.speech.Available()
}

// Listen starts a speech recognition session.
func (s *Service) Listen(ctx context.Context) (*speech.Session, error) {
	return s.speech.Start(ctx)
}
