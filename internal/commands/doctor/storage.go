package doctor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hay-kot/lens/internal/core/history"
)

// KeyLister lists the keys held by a backend.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
	Path() string
}

// ListReader reads raw values from a backend.
type ListReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Backend is the part of the key-value store the checks inspect.
type Backend interface {
	KeyLister
	ListReader
}

// readList loads the persisted history list without normalizing it. A missing
// or empty key is an empty list.
func readList(ctx context.Context, r ListReader, key string) ([]history.Entry, error) {
	raw, err := r.Get(ctx, key)
	if errors.Is(err, history.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if raw == "" {
		return nil, nil
	}
	return history.DecodeList(raw)
}

// HistoryState reports the loaded history state.
type HistoryState interface {
	EntryLister
	Incognito() bool
	MaxEntries() int
}

// StorageCheck verifies the backend is readable and reports what it holds.
type StorageCheck struct {
	store   Backend
	history HistoryState
	driver  string
	listKey string
}

// NewStorageCheck creates a new storage check.
func NewStorageCheck(store Backend, hist HistoryState, driver, listKey string) *StorageCheck {
	return &StorageCheck{store: store, history: hist, driver: driver, listKey: listKey}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	keys, err := c.store.Keys(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Backend",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s (%s): %v", c.driver, c.store.Path(), err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Backend",
		Status: StatusPass,
		Detail: fmt.Sprintf("%s (%s)", c.driver, c.store.Path()),
	})

	entries := c.history.Entries()
	switch {
	case slices.Contains(keys, c.listKey):
		if _, err := readList(ctx, c.store, c.listKey); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "History",
				Status: StatusFail,
				Detail: fmt.Sprintf("stored list is unreadable and was ignored: %v", err),
			})
			break
		}
		fallthrough
	case len(entries) > 0:
		result.Items = append(result.Items, CheckItem{
			Label:  "History",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d of %d entries", len(entries), c.history.MaxEntries()),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "History",
			Status: StatusPass,
			Detail: "empty",
		})
	}

	if c.history.Incognito() {
		result.Items = append(result.Items, CheckItem{
			Label:  "Incognito",
			Status: StatusWarn,
			Detail: "on; new searches are not saved",
		})
	}

	return result
}
