// Package jsonfile provides a JSON file-backed key-value store.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/hay-kot/lens/internal/core/history"
)

// record is a single stored value with metadata.
type record struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// kvFile is the root JSON structure stored on disk.
type kvFile struct {
	Entries map[string]record `json:"entries"`
}

// KVStore implements history.Backend using a JSON file for persistence.
type KVStore struct {
	path string
	mu   sync.RWMutex
}

var _ history.Backend = (*KVStore)(nil)

// NewKVStore creates a new JSON file KV store at the given path.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path}
}

// Path returns the file backing the store.
func (s *KVStore) Path() string {
	return s.path
}

// Close is a no-op; every operation opens and closes the file itself.
func (s *KVStore) Close() error {
	return nil
}

// lockPath returns the path to the lock file.
func (s *KVStore) lockPath() string {
	return s.path + ".lock"
}

// withSharedLock executes fn while holding a shared (read) file lock.
// Multiple processes can hold shared locks simultaneously.
func (s *KVStore) withSharedLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_SH, fn)
}

// withExclusiveLock executes fn while holding an exclusive (write) file lock.
func (s *KVStore) withExclusiveLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_EX, fn)
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *KVStore) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// Get returns the value stored under key. Returns history.ErrKeyNotFound if missing.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec   record
		found bool
	)

	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		rec, found = file.Entries[key]
		return nil
	})
	if err != nil {
		return "", err
	}

	if !found {
		return "", history.ErrKeyNotFound
	}

	return rec.Value, nil
}

// Set creates or overwrites the value stored under key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		now := time.Now()
		rec, exists := file.Entries[key]
		if exists {
			rec.Value = value
			rec.UpdatedAt = now
		} else {
			rec = record{
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}

		file.Entries[key] = rec
		return s.save(file)
	})
}

// Delete removes key. Returns history.ErrKeyNotFound if missing.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notFound bool

	err := s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		if _, ok := file.Entries[key]; !ok {
			notFound = true
			return nil
		}

		delete(file.Entries, key)
		return s.save(file)
	})
	if err != nil {
		return err
	}

	if notFound {
		return history.ErrKeyNotFound
	}

	return nil
}

// Keys returns all stored keys in sorted order.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string

	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		for k := range file.Entries {
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

// load reads the KV file from disk.
// Returns an empty kvFile if the file doesn't exist.
func (s *KVStore) load() (kvFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return kvFile{Entries: make(map[string]record)}, nil
		}
		return kvFile{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	if len(data) == 0 {
		return kvFile{Entries: make(map[string]record)}, nil
	}

	var file kvFile
	if err := json.Unmarshal(data, &file); err != nil {
		return kvFile{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	if file.Entries == nil {
		file.Entries = make(map[string]record)
	}

	return file, nil
}

// save writes the KV file to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (s *KVStore) save(file kvFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
