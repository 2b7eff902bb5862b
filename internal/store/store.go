// Package store opens the key-value backend selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/internal/core/history"
	"github.com/hay-kot/lens/internal/store/jsonfile"
	"github.com/hay-kot/lens/internal/store/sqlite"
)

// KV is a history backend that can also list its keys and be closed.
type KV interface {
	history.Backend
	Keys(ctx context.Context) ([]string, error)
	Path() string
	Close() error
}

var (
	_ KV = (*jsonfile.KVStore)(nil)
	_ KV = (*sqlite.KVStore)(nil)
)

// Open opens the backend configured in cfg.
func Open(cfg *config.Config) (KV, error) {
	path := cfg.StoragePath()

	switch cfg.Storage.Driver {
	case config.DriverJSONFile:
		return jsonfile.NewKVStore(path), nil
	case config.DriverSQLite:
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
