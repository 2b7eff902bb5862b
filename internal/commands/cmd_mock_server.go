package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/printer"
	"github.com/hay-kot/lens/internal/search/mock"
)

type MockServerCmd struct {
	flags *Flags
	addr  string
}

// NewMockServerCmd creates a new mock-server command
func NewMockServerCmd(flags *Flags) *MockServerCmd {
	return &MockServerCmd{flags: flags}
}

// Register adds the mock-server command to the application
func (cmd *MockServerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "mock-server",
		Usage:     "Serve canned search results locally",
		UsageText: "lens mock-server [--addr host:port]",
		Description: `Runs a local endpoint that answers every query with deterministic results
in the same format as the remote search API. Point search.endpoint at it to
try lens without API credentials.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8089",
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MockServerCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	p.Infof("Set search.endpoint to http://%s%s", cmd.addr, mock.Path)

	return mock.Serve(ctx, cmd.addr, log.With().Str("component", "mock-server").Logger())
}
