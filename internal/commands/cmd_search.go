package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/printer"
)

type SearchCmd struct {
	flags *Flags

	// Command-specific flags
	voice  bool
	asJSON bool
}

// NewSearchCmd creates a new search command
func NewSearchCmd(flags *Flags) *SearchCmd {
	return &SearchCmd{flags: flags}
}

// Register adds the search command to the application
func (cmd *SearchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Run a text search",
		UsageText: "lens search [options] [query...]",
		Description: `Searches the configured endpoint and prints the results.

With no query, prompts for one when attached to a terminal.
Use --voice to dictate the query with the configured speech command.
Successful searches are added to the history unless incognito mode is on.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "voice",
				Aliases:     []string{"v"},
				Usage:       "read the query from the speech command",
				Destination: &cmd.voice,
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

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))

	if cmd.voice {
		heard, err := cmd.listen(ctx, p)
		if err != nil {
			return err
		}
		query = heard
	}

	if query == "" {
		if !cmd.flags.IsInteractive() {
			return fmt.Errorf("a query is required when not running in a terminal")
		}

		var err error
		query, err = promptQuery(ctx, "")
		if errors.Is(err, errAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	out, err := cmd.flags.Service.Search(ctx, query)
	if err != nil {
		return searchError(err)
	}

	if cmd.flags.Service.History().Incognito() {
		p.Incognitof("Incognito mode is on; this search will not be saved")
	}

	return writeOutcome(c.Root().Writer, out, cmd.asJSON)
}

// listen streams transcripts to the printer until the speech command exits.
func (cmd *SearchCmd) listen(ctx context.Context, p *printer.Printer) (string, error) {
	sess, err := cmd.flags.Service.Listen(ctx)
	if err != nil {
		return "", err
	}

	p.Infof("Listening... (Ctrl+C to stop)")
	for text := range sess.Transcripts() {
		p.Printf("  %s", text)
	}

	text, err := sess.Wait()
	if err != nil {
		return "", fmt.Errorf("voice search: %w", err)
	}

	p.Successf("Heard %q", text)
	return text, nil
}
