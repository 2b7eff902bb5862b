package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hay-kot/lens/internal/core/history"
)

func TestKVStore_SetAndGet(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	err := store.Set(ctx, "foo", "bar")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := store.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if value != "bar" {
		t.Errorf("Value = %q, want %q", value, "bar")
	}
}

func TestKVStore_GetNotFound(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent")
	if !errors.Is(err, history.ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_UpdatePreservesCreatedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	store := NewKVStore(path)
	ctx := context.Background()

	if err := store.Set(ctx, "key", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	before := readRecord(t, path, "key")

	time.Sleep(10 * time.Millisecond)

	if err := store.Set(ctx, "key", "value2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	after := readRecord(t, path, "key")

	if after.Value != "value2" {
		t.Errorf("Value = %q, want %q", after.Value, "value2")
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt should be after original: %v <= %v", after.UpdatedAt, before.UpdatedAt)
	}
}

func TestKVStore_Keys(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	_ = store.Set(ctx, "lens_search_history", "[]")
	_ = store.Set(ctx, "lens_incognito_mode", "false")

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}

	want := []string{"lens_incognito_mode", "lens_search_history"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	_ = store.Set(ctx, "key", "value")

	err := store.Delete(ctx, "key")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = store.Get(ctx, "key")
	if !errors.Is(err, history.ErrKeyNotFound) {
		t.Errorf("Get after delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_DeleteNotFound(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	err := store.Delete(ctx, "nonexistent")
	if !errors.Is(err, history.ErrKeyNotFound) {
		t.Errorf("Delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	const goroutines = 10
	const iterations = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				if err := store.Set(ctx, key, "value"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
			}
		}(i)
	}

	wg.Wait()

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Final Keys failed: %v", err)
	}
	if len(keys) != goroutines*iterations {
		t.Errorf("Expected %d keys, got %d", goroutines*iterations, len(keys))
	}
}

func TestKVStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kv.json")

	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupted file: %v", err)
	}

	store := NewKVStore(path)
	ctx := context.Background()

	_, err := store.Get(ctx, "any")
	if err == nil {
		t.Error("Expected error for corrupted JSON, got nil")
	}

	// Set must not overwrite data it could not read
	err = store.Set(ctx, "key", "value")
	if err == nil {
		t.Error("Expected error for Set with corrupted file, got nil")
	}
}

func TestKVStore_BacksHistoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	ctx := context.Background()

	s := history.New(NewKVStore(path))
	s.Initialize(ctx)

	s.Add("cats", history.KindText, "")
	s.Add("dogs", history.KindText, "")
	s.Add("birds", history.KindText, "")
	s.Add("dogs", history.KindText, "")
	s.SetIncognito(true)
	s.Add("fish", history.KindText, "")
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	restarted := history.New(NewKVStore(path))
	defer func() { _ = restarted.Close(ctx) }()

	entries, incognito := restarted.Initialize(ctx)
	if !incognito {
		t.Error("incognito should survive restart")
	}

	var got []string
	for _, e := range entries {
		got = append(got, e.Text)
	}
	if fmt.Sprint(got) != "[dogs birds cats]" {
		t.Errorf("persisted = %v, want [dogs birds cats]", got)
	}
}

func readRecord(t *testing.T, path, key string) record {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}

	var file kvFile
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("parse store file: %v", err)
	}

	return file.Entries[key]
}
