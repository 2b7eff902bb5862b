package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/printer"
)

type IncognitoCmd struct {
	flags *Flags
}

// NewIncognitoCmd creates a new incognito command
func NewIncognitoCmd(flags *Flags) *IncognitoCmd {
	return &IncognitoCmd{flags: flags}
}

// Register adds the incognito command to the application
func (cmd *IncognitoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "incognito",
		Usage:     "Show or set incognito mode",
		UsageText: "lens incognito [on|off]",
		Description: `While incognito mode is on, searches are not written to the saved history.
The setting itself is saved and applies to later runs.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *IncognitoCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	hist := cmd.flags.Service.History()

	if c.Args().Len() == 0 {
		if hist.Incognito() {
			p.Incognitof("Incognito mode is on")
		} else {
			p.Infof("Incognito mode is off")
		}
		return nil
	}

	on, err := parseSwitch(c.Args().First())
	if err != nil {
		return err
	}

	hist.SetIncognito(on)
	if on {
		p.Incognitof("Incognito mode on; searches will not be saved")
	} else {
		p.Successf("Incognito mode off")
	}
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}
