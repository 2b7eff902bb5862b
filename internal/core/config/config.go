// Package config handles configuration loading and validation for lens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	History HistoryConfig `yaml:"history"`
	Search  SearchConfig  `yaml:"search"`
	Capture CaptureConfig `yaml:"capture"`
	Speech  SpeechConfig  `yaml:"speech"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects the backing key-value store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // jsonfile or sqlite
	Path   string `yaml:"path"`   // defaults to a file in the data directory
}

// HistoryConfig controls the search history store.
type HistoryConfig struct {
	MaxEntries     int           `yaml:"max_entries"`
	ListKey        string        `yaml:"list_key"`
	IncognitoKey   string        `yaml:"incognito_key"`
	PersistTimeout time.Duration `yaml:"persist_timeout"`
}

// SearchConfig points at the remote search endpoint.
type SearchConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"api_key"`
	EngineID  string        `yaml:"engine_id"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

// CaptureConfig describes the camera command and the photo library.
type CaptureConfig struct {
	// Command is a shell template run to capture a photo. It must write the
	// image to {{ .Output }}.
	Command         string   `yaml:"command"`
	OutputDir       string   `yaml:"output_dir"`
	LibraryDir      string   `yaml:"library_dir"`
	LibraryPatterns []string `yaml:"library_patterns"`
	DefaultLabels   []string `yaml:"default_labels"`
}

// SpeechConfig describes the speech-to-text command. The command writes one
// transcript per line to stdout; each line replaces the previous one.
type SpeechConfig struct {
	Command string `yaml:"command"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverJSONFile,
		},
		History: HistoryConfig{
			MaxEntries:     20,
			ListKey:        "lens_search_history",
			IncognitoKey:   "lens_incognito_mode",
			PersistTimeout: 5 * time.Second,
		},
		Search: SearchConfig{
			Endpoint:  "https://www.googleapis.com/customsearch/v1",
			Timeout:   10 * time.Second,
			CacheSize: 64,
		},
		Capture: CaptureConfig{
			LibraryDir:      defaultLibraryDir(),
			LibraryPatterns: []string{"**/*.{jpg,jpeg,png,gif,webp,heic}"},
			DefaultLabels:   []string{"nature", "landscape", "mountain", "scenic"},
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if key := os.Getenv("LENS_SEARCH_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	}
	if id := os.Getenv("LENS_SEARCH_ENGINE_ID"); id != "" {
		cfg.Search.EngineID = id
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
	if c.History.ListKey == "" {
		c.History.ListKey = defaults.History.ListKey
	}
	if c.History.IncognitoKey == "" {
		c.History.IncognitoKey = defaults.History.IncognitoKey
	}
	if c.History.PersistTimeout == 0 {
		c.History.PersistTimeout = defaults.History.PersistTimeout
	}
	if c.Search.Endpoint == "" {
		c.Search.Endpoint = defaults.Search.Endpoint
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = defaults.Search.Timeout
	}
	if c.Search.CacheSize == 0 {
		c.Search.CacheSize = defaults.Search.CacheSize
	}
	if c.Capture.LibraryDir == "" {
		c.Capture.LibraryDir = defaults.Capture.LibraryDir
	}
	if len(c.Capture.LibraryPatterns) == 0 {
		c.Capture.LibraryPatterns = defaults.Capture.LibraryPatterns
	}
	if len(c.Capture.DefaultLabels) == 0 {
		c.Capture.DefaultLabels = defaults.Capture.DefaultLabels
	}
}

// Validate checks that the configuration is usable. It returns
// criterio.FieldErrors describing every invalid field.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	switch c.Storage.Driver {
	case DriverJSONFile, DriverSQLite:
	default:
		errs = errs.Append("storage.driver", fmt.Errorf("unknown driver %q (expected %s or %s)", c.Storage.Driver, DriverJSONFile, DriverSQLite))
	}

	if c.History.MaxEntries < 1 {
		errs = errs.Append("history.max_entries", fmt.Errorf("must be at least 1"))
	}
	if c.History.ListKey == c.History.IncognitoKey {
		errs = errs.Append("history.incognito_key", fmt.Errorf("must differ from history.list_key"))
	}
	if c.History.PersistTimeout < 0 {
		errs = errs.Append("history.persist_timeout", fmt.Errorf("cannot be negative"))
	}

	if c.Search.Timeout < 0 {
		errs = errs.Append("search.timeout", fmt.Errorf("cannot be negative"))
	}
	if c.Search.CacheSize < 0 {
		errs = errs.Append("search.cache_size", fmt.Errorf("cannot be negative"))
	}

	return errs.ToError()
}

// StoragePath returns the path of the backing store file.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == DriverSQLite {
		return filepath.Join(c.DataDir, "lens.db")
	}
	return filepath.Join(c.DataDir, "lens.json")
}

// CaptureDir returns the directory captured photos are written to.
func (c *Config) CaptureDir() string {
	if c.Capture.OutputDir != "" {
		return c.Capture.OutputDir
	}
	return filepath.Join(c.DataDir, "captures")
}

func defaultLibraryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Pictures")
}
