package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/internal/lens"
	"github.com/hay-kot/lens/internal/store"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store is the key-value backend behind the history
	Store store.KV

	// Service orchestrates searches and owns the history store
	Service *lens.Service

	// Interactive overrides terminal detection when set (tests)
	Interactive *bool
}

// IsInteractive reports whether prompts can be shown.
func (f *Flags) IsInteractive() bool {
	if f.Interactive != nil {
		return *f.Interactive
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Close flushes pending history writes and closes the backend.
func (f *Flags) Close(ctx context.Context) error {
	var errs []error
	if f.Service != nil {
		errs = append(errs, f.Service.History().Close(ctx))
	}
	if f.Store != nil {
		errs = append(errs, f.Store.Close())
	}
	return errors.Join(errs...)
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lens", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "lens")
}
