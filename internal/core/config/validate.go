package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/lens/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// CaptureTemplateData defines available fields for the capture command template.
type CaptureTemplateData struct {
	Output string
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this checks template syntax, glob patterns, URLs and file access.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		return err
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		}
	}

	if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
		errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
	}

	u, err := url.Parse(c.Search.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = errs.Append("search.endpoint", fmt.Errorf("must be an absolute URL, got %q", c.Search.Endpoint))
	}

	if c.Capture.Command != "" {
		if _, err := tmpl.Render(c.Capture.Command, CaptureTemplateData{}); err != nil {
			errs = errs.Append("capture.command", fmt.Errorf("template error: %w", err))
		}
	}

	for i, pattern := range c.Capture.LibraryPatterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("capture.library_patterns[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	return errs.ToError()
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Search.APIKey == "" || c.Search.EngineID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Search",
			Item:     "api_key",
			Message:  "search.api_key or search.engine_id not set; searches will fail unless the endpoint is a mock server",
		})
	}

	if c.Capture.Command == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Capture",
			Item:     "command",
			Message:  "no capture command configured; use --library or --file to pick an image",
		})
	}

	if c.Capture.LibraryDir != "" {
		if _, err := os.Stat(c.Capture.LibraryDir); err != nil {
			warnings = append(warnings, ValidationWarning{
				Category: "Capture",
				Item:     "library_dir",
				Message:  fmt.Sprintf("photo library %s is not accessible", c.Capture.LibraryDir),
			})
		}
	}

	if c.Speech.Command == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Speech",
			Item:     "command",
			Message:  "no speech command configured; --voice is unavailable",
		})
	}

	return warnings
}
