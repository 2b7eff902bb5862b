package history

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a Backend when a key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Backend is the device-local key-value storage the history store persists to.
type Backend interface {
	// Get returns the value stored under key. Returns ErrKeyNotFound if missing.
	Get(ctx context.Context, key string) (string, error)
	// Set creates or overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Returns ErrKeyNotFound if missing.
	Delete(ctx context.Context, key string) error
}
