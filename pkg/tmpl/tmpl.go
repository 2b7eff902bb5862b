// Package tmpl renders the shell command templates used for capture and speech.
package tmpl

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

// shellQuote returns a shell-safe quoted string. It wraps the string in single
// quotes and escapes embedded single quotes as '\''.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

var funcs = template.FuncMap{
	"shq":  shellQuote,
	"base": filepath.Base,
	"dir":  filepath.Dir,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - shq: shell-quote a string for safe use in shell commands
//   - base, dir: filepath.Base and filepath.Dir
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
