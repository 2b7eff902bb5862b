package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/pkg/executil"
	"github.com/hay-kot/lens/pkg/randid"
	"github.com/hay-kot/lens/pkg/tmpl"
)

// Camera captures photos by running a shell command template that writes the
// image to {{ .Output }}.
type Camera struct {
	exec      executil.Executor
	command   string
	outputDir string
	log       zerolog.Logger
	now       func() time.Time
}

// NewCamera creates a Camera. An empty command yields a Camera whose Capture
// always returns ErrNoCamera.
func NewCamera(exec executil.Executor, command, outputDir string, log zerolog.Logger) *Camera {
	return &Camera{
		exec:      exec,
		command:   command,
		outputDir: outputDir,
		log:       log,
		now:       time.Now,
	}
}

// Available reports whether a capture command is configured.
func (c *Camera) Available() bool {
	return strings.TrimSpace(c.command) != ""
}

// Capture runs the capture command and returns the written image. A canceled
// context or a command that exits without writing the file yields ErrCanceled.
func (c *Camera) Capture(ctx context.Context) (Image, error) {
	if !c.Available() {
		return Image{}, ErrNoCamera
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return Image{}, fmt.Errorf("create capture directory: %w", err)
	}

	at := c.now()
	output := filepath.Join(c.outputDir, fmt.Sprintf("capture-%s-%s.jpg", at.Format("20060102-150405"), randid.Generate(6)))

	script, err := tmpl.Render(c.command, config.CaptureTemplateData{Output: output})
	if err != nil {
		return Image{}, fmt.Errorf("render capture command: %w", err)
	}

	c.log.Debug().Str("command", script).Msg("running capture command")

	out, err := executil.Shell(ctx, c.exec, script)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return Image{}, ErrCanceled
		}
		return Image{}, fmt.Errorf("capture command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		c.log.Debug().Str("output", output).Msg("capture command wrote no image")
		return Image{}, ErrCanceled
	}

	return Image{Path: output, Source: SourceCamera, CapturedAt: at}, nil
}
