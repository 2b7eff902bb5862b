package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_FlushReplaysInOrder(t *testing.T) {
	d := &DeferredWriter{}
	_, _ = d.Write([]byte("one\n"))
	_, _ = d.Write([]byte("two\n"))
	require.Equal(t, 2, d.Len())

	var buf bytes.Buffer
	require.NoError(t, d.Flush(&buf))
	assert.Equal(t, "one\ntwo\n", buf.String())
	assert.Zero(t, d.Len())
}

func TestDeferredWriter_CopiesInput(t *testing.T) {
	d := &DeferredWriter{}
	p := []byte("abc")
	_, _ = d.Write(p)
	p[0] = 'x'

	var buf bytes.Buffer
	require.NoError(t, d.Flush(&buf))
	assert.Equal(t, "abc", buf.String())
}

func TestDeferredWriter_ZerologConsole(t *testing.T) {
	d := &DeferredWriter{}
	logger := zerolog.New(d)
	logger.Warn().Str("key", "lens_search_history").Msg("persist failed")

	var buf bytes.Buffer
	require.NoError(t, d.Flush(zerolog.ConsoleWriter{Out: &buf, NoColor: true}))
	assert.Contains(t, buf.String(), "persist failed")
	assert.Contains(t, buf.String(), "lens_search_history")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestDeferredWriter_FlushError(t *testing.T) {
	d := &DeferredWriter{}
	_, _ = d.Write([]byte("x"))
	require.Error(t, d.Flush(failingWriter{}))
}
