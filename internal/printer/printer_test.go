package printer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Successf("added %q", "cats")
	p.Warnf("slow")
	p.Incognitof("incognito on")
	p.CheckItem("Storage", "ok")

	assert.Equal(t, "✔ added \"cats\"\n• slow\n◉ incognito on\n  ✔ Storage: ok\n", buf.String())
}

func TestPrinter_FatalError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.FatalError(errors.New("search failed"))
	assert.Equal(t, "╭ Error\n│ search failed\n╵\n", buf.String())
}

func TestPrinter_FatalErrorValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	var b criterio.FieldErrorsBuilder
	b = b.Append("history.max_entries", errors.New("must be at least 1"))
	err := fmt.Errorf("load config: %w", b.ToError())

	p.FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "╭ Validation Error")
	assert.Contains(t, out, "│ load config")
	assert.Contains(t, out, "✘ history.max_entries: must be at least 1")
}
