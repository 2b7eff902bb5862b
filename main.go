package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/commands"
	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/internal/core/history"
	"github.com/hay-kot/lens/internal/lens"
	"github.com/hay-kot/lens/internal/printer"
	"github.com/hay-kot/lens/internal/search"
	"github.com/hay-kot/lens/internal/store"
	"github.com/hay-kot/lens/pkg/executil"
	"github.com/hay-kot/lens/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// closeTimeout bounds how long pending history writes may delay exit.
const closeTimeout = 5 * time.Second

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(sigCtx, p)
		flags = &commands.Flags{}
	)

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "lens",
		Usage:     "Search the web with text, voice or a photo",
		UsageText: "lens [global options] command [command options]",
		Description: `Lens runs text, voice and image searches from the terminal and keeps a
short history of recent searches.

Run 'lens' with no arguments to open the interactive search screen.
Run 'lens search <query>' for a one-off search and 'lens capture' to search
with a photo. Turn on 'lens incognito on' to stop recording searches.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("LENS_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("LENS_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("LENS_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("LENS_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// No subcommand means TUI (default action)
			isTUI := len(c.Args().Slice()) == 0

			// In TUI mode, buffer logs to display after exit
			var deferred io.Writer
			if isTUI {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			kv, err := store.Open(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open store: %w", err)
			}
			flags.Store = kv

			logger := log.With().Str("component", "lens").Logger()

			client, err := search.New(search.Options{
				Endpoint:  cfg.Search.Endpoint,
				APIKey:    cfg.Search.APIKey,
				EngineID:  cfg.Search.EngineID,
				Timeout:   cfg.Search.Timeout,
				CacheSize: cfg.Search.CacheSize,
				Logger:    logger.With().Str("module", "search").Logger(),
			})
			if err != nil {
				return ctx, fmt.Errorf("create search client: %w", err)
			}

			hist := history.New(kv,
				history.WithLogger(logger.With().Str("module", "history").Logger()),
				history.WithMaxEntries(cfg.History.MaxEntries),
				history.WithKeys(cfg.History.ListKey, cfg.History.IncognitoKey),
				history.WithPersistTimeout(cfg.History.PersistTimeout),
			)
			hist.Initialize(ctx)

			flags.Service = lens.New(hist, client, cfg, &executil.RealExecutor{}, logger)
			return ctx, nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	app = commands.NewSearchCmd(flags).Register(app)
	app = commands.NewCaptureCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)
	app = commands.NewIncognitoCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewMockServerCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'lens --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	// Pending history writes get a bounded grace period after a signal.
	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	if err := flags.Close(closeCtx); err != nil {
		log.Warn().Err(err).Msg("failed to close store")
	}
	cancel()
	stop()

	// Flush deferred logs to console after TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			output = io.MultiWriter(file, deferred)
		} else {
			output = io.MultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, file)
		}
	} else if deferred != nil {
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
