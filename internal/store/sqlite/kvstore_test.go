package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lens/internal/core/history"
)

func openTestStore(t *testing.T) *KVStore {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "lens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKVStore_SetGetOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestKVStore_MissingKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, history.ErrKeyNotFound)

	err = s.Delete(ctx, "missing")
	require.ErrorIs(t, err, history.ErrKeyNotFound)
}

func TestKVStore_DeleteAndKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "b", "2"))
	require.NoError(t, s.Set(ctx, "a", "1"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Delete(ctx, "a"))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestKVStore_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "v"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestKVStore_BacksHistoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lens.db")
	ctx := context.Background()

	kv, err := Open(path)
	require.NoError(t, err)

	s := history.New(kv)
	s.Initialize(ctx)
	s.Add("cats", history.KindText, "")
	s.Add("dogs", history.KindText, "")
	s.Clear()
	s.Add("birds", history.KindImage, "/photos/bird.jpg")
	require.NoError(t, s.Close(ctx))
	require.NoError(t, kv.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	restarted := history.New(reopened)
	defer func() { _ = restarted.Close(ctx) }()

	entries, incognito := restarted.Initialize(ctx)
	assert.False(t, incognito)
	require.Len(t, entries, 1)
	assert.Equal(t, "birds", entries[0].Text)
	assert.Equal(t, "/photos/bird.jpg", entries[0].ImageRef)
}
