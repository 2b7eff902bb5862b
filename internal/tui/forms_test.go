package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lens/internal/capture"
)

func TestNewSearchForm(t *testing.T) {
	t.Run("creates form", func(t *testing.T) {
		f := NewSearchForm("")
		require.NotNil(t, f.Form())
		assert.Empty(t, f.Query())
	})

	t.Run("keeps initial query", func(t *testing.T) {
		f := NewSearchForm("snow leopard")
		assert.Equal(t, "snow leopard", f.Query())
	})
}

func TestNewLibraryForm(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	images := []capture.Image{
		{Path: "/photos/a.jpg", CapturedAt: at},
		{Path: "/photos/trips/b.jpg", CapturedAt: at},
	}

	f := NewLibraryForm(images, "/photos")
	require.NotNil(t, f.Form())
	assert.Equal(t, "/photos/a.jpg", f.Image().Path)

	f.selected = 1
	assert.Equal(t, "/photos/trips/b.jpg", f.Image().Path)
}
