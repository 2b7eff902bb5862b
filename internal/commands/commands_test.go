package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/internal/core/history"
	"github.com/hay-kot/lens/internal/lens"
	"github.com/hay-kot/lens/internal/printer"
	"github.com/hay-kot/lens/internal/search"
	"github.com/hay-kot/lens/internal/search/mock"
	"github.com/hay-kot/lens/internal/store"
	"github.com/hay-kot/lens/pkg/executil"
)

type harness struct {
	flags *Flags
	hist  *history.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := httptest.NewServer(mock.NewHandler(zerolog.Nop()))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Capture.LibraryDir = t.TempDir()

	kv, err := store.Open(&cfg)
	require.NoError(t, err)

	client, err := search.New(search.Options{Endpoint: srv.URL + mock.Path, Timeout: 5 * time.Second})
	require.NoError(t, err)

	hist := history.New(kv)
	hist.Initialize(context.Background())

	interactive := false
	flags := &Flags{
		DataDir:     cfg.DataDir,
		Config:      &cfg,
		Store:       kv,
		Service:     lens.New(hist, client, &cfg, &executil.RecordingExecutor{}, zerolog.Nop()),
		Interactive: &interactive,
	}
	t.Cleanup(func() { _ = flags.Close(context.Background()) })

	return &harness{flags: flags, hist: hist}
}

// run executes one command line against a fresh app and returns stdout and
// the printer output.
func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := &cli.Command{Name: "lens", Writer: &stdout, ErrWriter: &stderr}
	app = NewSearchCmd(h.flags).Register(app)
	app = NewCaptureCmd(h.flags).Register(app)
	app = NewHistoryCmd(h.flags).Register(app)
	app = NewIncognitoCmd(h.flags).Register(app)

	ctx := printer.NewContext(context.Background(), printer.NewPlain(&stderr))
	err := app.Run(ctx, append([]string{"lens"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestSearchCmd_JSON(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "search", "--json", "snow", "leopard")
	require.NoError(t, err)

	var rs search.ResultSet
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	assert.Equal(t, "snow leopard", rs.Query)
	assert.Len(t, rs.Items, mock.ResultsPerQuery)

	require.Len(t, h.hist.Entries(), 1)
	assert.Equal(t, "snow leopard", h.hist.Entries()[0].Text)
}

func TestSearchCmd_Markdown(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "search", "cats")
	require.NoError(t, err)
	assert.Contains(t, out, "cats | result 1")
}

func TestSearchCmd_RequiresQueryWithoutTerminal(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "search")
	require.Error(t, err)
	assert.Empty(t, h.hist.Entries())
}

func TestSearchCmd_VoiceNotConfigured(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "search", "--voice")
	require.Error(t, err)
}

func TestCaptureCmd_NoCamera(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "capture")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--library")
}

func TestHistoryCmd_ListJSON(t *testing.T) {
	h := newHarness(t)
	h.hist.Add("cats", history.KindText, "")
	h.hist.Add("dogs", history.KindText, "")

	out, _, err := h.run(t, "history", "ls", "--json")
	require.NoError(t, err)

	var body struct {
		Incognito bool            `json:"incognito"`
		Entries   []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.False(t, body.Incognito)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "dogs", body.Entries[0].Text)
}

func TestHistoryCmd_ListTable(t *testing.T) {
	h := newHarness(t)
	h.hist.Add("cats", history.KindText, "")

	out, _, err := h.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "SEARCH")
	assert.Contains(t, out, "cats")
}

func TestHistoryCmd_Remove(t *testing.T) {
	h := newHarness(t)
	e, ok := h.hist.Add("cats", history.KindText, "")
	require.True(t, ok)
	h.hist.Add("dogs", history.KindText, "")

	_, stderr, err := h.run(t, "history", "rm", e.ID)
	require.NoError(t, err)
	assert.Contains(t, stderr, "cats")
	require.Len(t, h.hist.Entries(), 1)
	assert.Equal(t, "dogs", h.hist.Entries()[0].Text)

	_, _, err = h.run(t, "history", "rm", e.ID)
	require.Error(t, err)
}

func TestHistoryCmd_RemoveWhileIncognito(t *testing.T) {
	h := newHarness(t)
	e, _ := h.hist.Add("cats", history.KindText, "")
	require.NoError(t, h.hist.Flush(context.Background()))
	h.hist.SetIncognito(true)

	_, stderr, err := h.run(t, "history", "rm", e.ID)
	require.NoError(t, err)
	assert.Contains(t, stderr, "not saved")
	assert.Empty(t, h.hist.Entries())

	require.NoError(t, h.hist.Flush(context.Background()))
	raw, err := h.flags.Store.Get(context.Background(), history.DefaultListKey)
	require.NoError(t, err)
	assert.Contains(t, raw, "cats")
}

func TestHistoryCmd_ClearNeedsYes(t *testing.T) {
	h := newHarness(t)
	h.hist.Add("cats", history.KindText, "")

	_, _, err := h.run(t, "history", "clear")
	require.Error(t, err)
	assert.Len(t, h.hist.Entries(), 1)

	_, stderr, err := h.run(t, "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Cleared 1 entries")
	assert.Empty(t, h.hist.Entries())
}

func TestIncognitoCmd(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "incognito", "on")
	require.NoError(t, err)
	assert.True(t, h.hist.Incognito())

	_, _, err = h.run(t, "search", "--json", "secret")
	require.NoError(t, err)
	assert.Len(t, h.hist.Entries(), 1, "entry is kept in memory for the session")

	require.NoError(t, h.hist.Flush(context.Background()))
	_, err = h.flags.Store.Get(context.Background(), history.DefaultListKey)
	require.ErrorIs(t, err, history.ErrKeyNotFound)

	_, _, err = h.run(t, "incognito", "off")
	require.NoError(t, err)
	assert.False(t, h.hist.Incognito())

	_, _, err = h.run(t, "incognito", "maybe")
	require.Error(t, err)
}

func TestResolveEntry(t *testing.T) {
	entries := []history.Entry{
		{ID: "0190a1b2-aaaa", Text: "cats"},
		{ID: "0190a1b2-bbbb", Text: "dogs"},
	}

	e, err := resolveEntry(entries, "0190a1b2-b")
	require.NoError(t, err)
	assert.Equal(t, "dogs", e.Text)

	_, err = resolveEntry(entries, "0190a1b2")
	require.Error(t, err)

	_, err = resolveEntry(entries, "ffff")
	require.Error(t, err)
}

func TestParseSwitch(t *testing.T) {
	for _, s := range []string{"on", "ON", "true", "yes", "1"} {
		on, err := parseSwitch(s)
		require.NoError(t, err)
		assert.True(t, on, s)
	}
	for _, s := range []string{"off", "false", "no", "0"} {
		on, err := parseSwitch(s)
		require.NoError(t, err)
		assert.False(t, on, s)
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", ago(now, now))
	assert.Equal(t, "5m ago", ago(now, now.Add(-5*time.Minute)))
	assert.Equal(t, "2h ago", ago(now, now.Add(-2*time.Hour)))
	assert.Equal(t, "3d ago", ago(now, now.Add(-72*time.Hour)))
	assert.Equal(t, "2025-01-01", ago(now, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}
