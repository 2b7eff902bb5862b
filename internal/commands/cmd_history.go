package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/core/history"
	"github.com/hay-kot/lens/internal/core/validate"
	"github.com/hay-kot/lens/internal/printer"
)

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	asJSON bool
	yes    bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "print entries as JSON",
			Destination: &cmd.asJSON,
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Aliases:   []string{"h"},
		Usage:     "View or manage search history",
		UsageText: "lens history [command] [options]",
		Description: `Lists recent searches, most recent first.

The history keeps the most recent searches (20 by default). Searching for the
same text again moves it to the top instead of adding a duplicate.`,
		Flags:  []cli.Flag{jsonFlag()},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List search history",
				UsageText: "lens history ls [--json]",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    cmd.runList,
			},
			{
				Name:      "rm",
				Usage:     "Remove a history entry",
				UsageText: "lens history rm <id>",
				Description: `Removes one entry. The id may be abbreviated to any unique prefix.`,
				Action: cmd.runRemove,
			},
			{
				Name:      "clear",
				Usage:     "Remove all history entries",
				UsageText: "lens history clear [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	hist := cmd.flags.Service.History()
	entries := hist.Entries()

	if cmd.asJSON {
		return writeJSON(c.Root().Writer, struct {
			Incognito bool            `json:"incognito"`
			Entries   []history.Entry `json:"entries"`
		}{
			Incognito: hist.Incognito(),
			Entries:   entries,
		})
	}

	if hist.Incognito() {
		p.Incognitof("Incognito mode is on; new searches are not saved")
	}

	if len(entries) == 0 {
		p.Infof("No search history")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tWHEN\tSEARCH")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Kind, ago(now, e.Timestamp), e.Text)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) runRemove(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	hist := cmd.flags.Service.History()

	arg := c.Args().First()
	if err := validate.EntryID(arg); err != nil {
		return err
	}

	entry, err := resolveEntry(hist.Entries(), arg)
	if err != nil {
		return err
	}

	if !hist.Remove(entry.ID) {
		return fmt.Errorf("no history entry with id %q", arg)
	}

	if hist.Incognito() {
		p.Incognitof("Removed %q for this session only; incognito mode is on, so the change is not saved", entry.Text)
		return nil
	}

	p.Successf("Removed %q", entry.Text)
	return nil
}

// resolveEntry finds the entry whose id equals or uniquely starts with prefix.
func resolveEntry(entries []history.Entry, prefix string) (history.Entry, error) {
	var matches []history.Entry
	for _, e := range entries {
		if e.ID == prefix {
			return e, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return history.Entry{}, fmt.Errorf("no history entry with id %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return history.Entry{}, fmt.Errorf("id %q matches %d entries", prefix, len(matches))
	}
}

func (cmd *HistoryCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	hist := cmd.flags.Service.History()

	n := len(hist.Entries())

	if !cmd.yes {
		if !cmd.flags.IsInteractive() {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		ok, err := confirm(ctx, "Clear search history?", fmt.Sprintf("%d entries will be removed.", n))
		if errors.Is(err, errAborted) || (err == nil && !ok) {
			p.Infof("History kept")
			return nil
		}
		if err != nil {
			return err
		}
	}

	hist.Clear()
	p.Successf("Cleared %d entries", n)
	return nil
}

// ago formats the time since t in the largest whole unit.
func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
