package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/capture"
	"github.com/hay-kot/lens/internal/printer"
)

type CaptureCmd struct {
	flags *Flags

	// Command-specific flags
	library bool
	file    string
	asJSON  bool
}

// NewCaptureCmd creates a new capture command
func NewCaptureCmd(flags *Flags) *CaptureCmd {
	return &CaptureCmd{flags: flags}
}

// Register adds the capture command to the application
func (cmd *CaptureCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "capture",
		Aliases:   []string{"c"},
		Usage:     "Search with an image",
		UsageText: "lens capture [--library | --file path] [--json]",
		Description: `Acquires an image and runs an image search with it.

By default the configured capture command takes a photo. Use --library to pick
from the photo library, or --file to search with a specific image.
Successful searches are added to the history unless incognito mode is on.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "library",
				Aliases:     []string{"l"},
				Usage:       "pick an image from the photo library",
				Destination: &cmd.library,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "search with the image at `PATH`",
				Destination: &cmd.file,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print results as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CaptureCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.library && cmd.file != "" {
		return fmt.Errorf("--library and --file cannot be used together")
	}

	img, err := cmd.acquire(ctx)
	if errors.Is(err, capture.ErrCanceled) {
		p.Infof("Capture canceled")
		return nil
	}
	if err != nil {
		return searchError(err)
	}

	p.Infof("Searching with %s", img.Path)

	out, err := cmd.flags.Service.SearchImage(ctx, img)
	if err != nil {
		return searchError(err)
	}

	if cmd.flags.Service.History().Incognito() {
		p.Incognitof("Incognito mode is on; this search will not be saved")
	}

	return writeOutcome(c.Root().Writer, out, cmd.asJSON)
}

func (cmd *CaptureCmd) acquire(ctx context.Context) (capture.Image, error) {
	svc := cmd.flags.Service

	switch {
	case cmd.file != "":
		return capture.FromFile(cmd.file)
	case cmd.library:
		return cmd.pick(ctx)
	case svc.CameraAvailable():
		return svc.Capture(ctx)
	case cmd.flags.IsInteractive():
		return cmd.pick(ctx)
	default:
		return capture.Image{}, capture.ErrNoCamera
	}
}

func (cmd *CaptureCmd) pick(ctx context.Context) (capture.Image, error) {
	if !cmd.flags.IsInteractive() {
		return capture.Image{}, fmt.Errorf("--library needs a terminal; use --file instead")
	}
	return cmd.flags.Service.PickFromLibrary(ctx, libraryPicker{root: cmd.flags.Config.Capture.LibraryDir})
}
